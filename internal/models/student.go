package models

import "time"

// Student ("siswa") enrolled in a class.
type Student struct {
	ID           int64      `db:"id" json:"id"`
	UserID       *int64     `db:"user_id" json:"userId"`
	Nisn         string     `db:"nisn" json:"nisn"`
	Nama         string     `db:"nama" json:"nama"`
	KelasID      *int64     `db:"kelas_id" json:"kelasId"`
	JenisKelamin *string    `db:"jenis_kelamin" json:"jenisKelamin,omitempty"`
	TanggalLahir *time.Time `db:"tanggal_lahir" json:"tanggalLahir,omitempty"`
	Alamat       *string    `db:"alamat" json:"alamat,omitempty"`
	TahunMasuk   *int       `db:"tahun_masuk" json:"tahunMasuk,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
}

// StudentDetail joins a student with their class name.
type StudentDetail struct {
	Student
	ClassName *string `db:"class_name" json:"className,omitempty"`
}
