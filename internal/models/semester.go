package models

import "time"

// Semester is a bounded academic term identified by school year and term
// number (1 or 2). "Active" is derived from the date bounds, never stored.
type Semester struct {
	ID                int64     `db:"id" json:"id"`
	TahunAjaran       string    `db:"tahun_ajaran" json:"tahunAjaran"`
	Semester          int       `db:"semester" json:"semester"`
	TanggalMulai      time.Time `db:"tanggal_mulai" json:"tanggalMulai"`
	TanggalSelesai    time.Time `db:"tanggal_selesai" json:"tanggalSelesai"`
	JumlahHariBelajar int       `db:"jumlah_hari_belajar" json:"jumlahHariBelajar"`
	Catatan           *string   `db:"catatan" json:"catatan,omitempty"`
	CreatedAt         time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time `db:"updated_at" json:"updatedAt"`
}

// SemesterRef identifies a semester either by id or by the
// (tahunAjaran, semester) pair. All fields optional; raw values are kept so
// non-numeric input can be reported distinctly from missing input.
type SemesterRef struct {
	SemesterID  FlexNumber `json:"semesterId"`
	TahunAjaran string     `json:"tahunAjaran"`
	Semester    FlexNumber `json:"semester"`
}

// HasID reports whether an id reference was supplied.
func (r SemesterRef) HasID() bool {
	return !r.SemesterID.Empty()
}

// HasPair reports whether both year and term number were supplied.
func (r SemesterRef) HasPair() bool {
	return r.TahunAjaran != "" && !r.Semester.Empty()
}

// EnforcementMode gates grade and attendance entry against inactive or
// unspecified semesters.
type EnforcementMode string

const (
	EnforcementRelaxed EnforcementMode = "relaxed"
	EnforcementStrict  EnforcementMode = "strict"
)

// SettingKeySemesterEnforcement is the app_settings key holding the mode.
const SettingKeySemesterEnforcement = "semester_enforcement_mode"
