package models

// UserActivity accumulates reading time per user per local calendar day.
// At most one record exists per (UserID, Date).
type UserActivity struct {
	UserID    string `json:"userId"`
	Date      string `json:"date"`      // "2006-01-02", local calendar date
	TimeSpent int    `json:"timeSpent"` // minutes
}
