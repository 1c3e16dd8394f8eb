package library

import "errors"

// Sentinel errors returned by Store operations. Handlers map these to HTTP
// status codes; none of them are fatal to the process.
var (
	ErrUnauthenticated = errors.New("no authenticated user")
	ErrForbidden       = errors.New("operation not permitted for role")
	ErrNotFound        = errors.New("not found")
	ErrUnavailable     = errors.New("no copies available")
	ErrAlreadyBorrowed = errors.New("book already borrowed by this user")
	ErrAlreadyReturned = errors.New("borrow record already returned")
	ErrDuplicateReview = errors.New("user already reviewed this book")
	ErrNotOwner        = errors.New("not the owner of this record")
	ErrConflict        = errors.New("conflicting state")
	ErrInvalidInput    = errors.New("invalid input")
)
