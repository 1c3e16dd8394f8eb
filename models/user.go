package models

import "time"

// Role constants for user authorization.
const (
	RoleAdmin   = "admin"
	RoleFaculty = "faculty"
	RoleStudent = "student"
)

var ValidRoles = []string{RoleAdmin, RoleFaculty, RoleStudent}

func RoleValid(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role"`
	Password  string    `json:"password,omitempty"` // bcrypt hash; handlers blank it before responding
	CreatedAt time.Time `json:"createdAt"`
}
