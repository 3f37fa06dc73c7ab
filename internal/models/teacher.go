package models

import "time"

// Teacher ("guru") on the school roster.
type Teacher struct {
	ID        int64     `db:"id" json:"id"`
	UserID    *int64    `db:"user_id" json:"userId"`
	Nama      string    `db:"nama" json:"nama"`
	Nip       string    `db:"nip" json:"nip"`
	Email     *string   `db:"email" json:"email,omitempty"`
	NoTelepon *string   `db:"no_telepon" json:"noTelepon,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
