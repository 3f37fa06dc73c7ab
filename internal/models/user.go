package models

import "time"

// UserRole enumerates the roles known to the system.
type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RoleGuru      UserRole = "guru"
	RoleWalikelas UserRole = "walikelas"
	RoleSiswa     UserRole = "siswa"
)

// Valid reports whether the role is one of the known values.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleGuru, RoleWalikelas, RoleSiswa:
		return true
	}
	return false
}

// User is an account that can sign in.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Nama         string    `db:"nama" json:"nama"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         UserRole  `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}
