package models

type UserRole string

const (
	RoleTeacher UserRole = "teacher"
	RoleStudent UserRole = "student"
)

// User is the actor supplied by the identity provider. The pipeline only
// reads the id and role; it never validates them against anything.
type User struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Role UserRole `json:"role"`
}

func (u *User) IsTeacher() bool {
	return u.Role == RoleTeacher
}

func (u *User) IsStudent() bool {
	return u.Role == RoleStudent
}
