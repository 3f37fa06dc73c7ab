package models

import "time"

// Subject ("mata pelajaran") taught at the school.
type Subject struct {
	ID        int64     `db:"id" json:"id"`
	Nama      string    `db:"nama" json:"nama"`
	Kode      string    `db:"kode" json:"kode"`
	Kelompok  *string   `db:"kelompok" json:"kelompok,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
