package models

import "time"

// Class ("kelas") groups students; the optional walikelas is the homeroom
// teacher responsible for the class.
type Class struct {
	ID          int64     `db:"id" json:"id"`
	Nama        string    `db:"nama" json:"nama"`
	Tingkat     string    `db:"tingkat" json:"tingkat"`
	Jurusan     *string   `db:"jurusan" json:"jurusan,omitempty"`
	WalikelasID *int64    `db:"walikelas_id" json:"walikelasId"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}
