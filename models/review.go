package models

import "time"

type Review struct {
	ID      string    `json:"id"`
	BookID  string    `json:"bookId"`
	UserID  string    `json:"userId"`
	Rating  int       `json:"rating"` // 1..5
	Comment string    `json:"comment,omitempty"`
	Date    time.Time `json:"date"`
}

type Feedback struct {
	ID      string    `json:"id"`
	UserID  string    `json:"userId"`
	Rating  int       `json:"rating"` // 1..5
	Comment string    `json:"comment,omitempty"`
	Date    time.Time `json:"date"`
}
