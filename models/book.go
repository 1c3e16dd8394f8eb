package models

import "time"

type Book struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	Genre           string    `json:"genre,omitempty"`
	ISBN            string    `json:"isbn,omitempty"`
	Description     string    `json:"description,omitempty"`
	PublicationYear int       `json:"publicationYear,omitempty"`
	TotalCopies     int       `json:"totalCopies"`
	AvailableCopies int       `json:"availableCopies"`
	AverageRating   float64   `json:"averageRating"`
	TotalRatings    int       `json:"totalRatings"`
	CoverS3Key      string    `json:"-"`                  // object key in S3
	CoverURL        string    `json:"coverUrl,omitempty"` // external URL or /api/books/:id/cover
	CreatedAt       time.Time `json:"createdAt"`
}
