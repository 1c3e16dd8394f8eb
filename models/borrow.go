package models

import "time"

// LoanPeriodDays is how long a borrowed book may be kept before fines accrue.
const LoanPeriodDays = 25

type BorrowRecord struct {
	ID         string     `json:"id"`
	BookID     string     `json:"bookId"`
	UserID     string     `json:"userId"`
	BorrowDate time.Time  `json:"borrowDate"`
	DueDate    time.Time  `json:"dueDate"`
	ReturnDate *time.Time `json:"returnDate,omitempty"`
	Fine       int        `json:"fine"` // currency units, 1 per full day overdue
}

// Returned reports whether the loan has been closed.
func (r *BorrowRecord) Returned() bool {
	return r.ReturnDate != nil
}
