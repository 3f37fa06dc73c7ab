package models

import "time"

// SchoolProfile is the single-row public profile of the school.
type SchoolProfile struct {
	ID        int64     `db:"id" json:"id"`
	Nama      string    `db:"nama" json:"nama"`
	Npsn      *string   `db:"npsn" json:"npsn,omitempty"`
	Alamat    *string   `db:"alamat" json:"alamat,omitempty"`
	Telepon   *string   `db:"telepon" json:"telepon,omitempty"`
	Email     *string   `db:"email" json:"email,omitempty"`
	Website   *string   `db:"website" json:"website,omitempty"`
	KepSek    *string   `db:"kepala_sekolah" json:"kepalaSekolah,omitempty"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Achievement ("prestasi") showcased by the school.
type Achievement struct {
	ID        int64     `db:"id" json:"id"`
	Judul     string    `db:"judul" json:"judul"`
	Deskripsi *string   `db:"deskripsi" json:"deskripsi,omitempty"`
	Tingkat   *string   `db:"tingkat" json:"tingkat,omitempty"`
	Tahun     *int      `db:"tahun" json:"tahun,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Program is an academic or extracurricular program offered by the school.
type Program struct {
	ID        int64     `db:"id" json:"id"`
	Nama      string    `db:"nama" json:"nama"`
	Deskripsi *string   `db:"deskripsi" json:"deskripsi,omitempty"`
	Kategori  *string   `db:"kategori" json:"kategori,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// RegistrationLink is a shareable, signed link for student registration.
type RegistrationLink struct {
	ID        int64      `db:"id" json:"id"`
	Kode      string     `db:"kode" json:"kode"`
	Token     string     `db:"token" json:"token"`
	Audience  *string    `db:"audience" json:"audience,omitempty"`
	ExpiresAt time.Time  `db:"expires_at" json:"expiresAt"`
	UsedAt    *time.Time `db:"used_at" json:"usedAt,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
}

// AppSetting is a key/value configuration row.
type AppSetting struct {
	Key       string    `db:"key" json:"key"`
	Value     string    `db:"value" json:"value"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
