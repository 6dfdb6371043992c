package models

// Role defines the account role stored on user profiles
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// ValidRole reports whether r is one of the known account roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// Term represents the academic term a resource belongs to
type Term string

const (
	TermOdd  Term = "odd"
	TermEven Term = "even"
)

// ValidTerm reports whether t is a known term value. Legacy records may carry
// an empty term meaning "unspecified"; that case is handled by normalization,
// not here.
func ValidTerm(t Term) bool {
	return t == TermOdd || t == TermEven
}
