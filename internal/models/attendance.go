package models

import "time"

// AttendanceStatus enumerates attendance outcomes.
type AttendanceStatus string

const (
	StatusHadir AttendanceStatus = "hadir"
	StatusIzin  AttendanceStatus = "izin"
	StatusSakit AttendanceStatus = "sakit"
	StatusAlfa  AttendanceStatus = "alfa"
)

// Valid reports whether the status is one of the known values.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case StatusHadir, StatusIzin, StatusSakit, StatusAlfa:
		return true
	}
	return false
}

// AutoAlphaNote is the fixed note attached to system-generated absences.
const AutoAlphaNote = "Ditandai otomatis oleh sistem"

// AttendanceRecord is one student's attendance for one subject on one date.
// Semester metadata is nullable: rows written while no semester is active
// carry NULLs.
type AttendanceRecord struct {
	ID          int64            `db:"id" json:"id"`
	StudentID   int64            `db:"student_id" json:"studentId"`
	KelasID     int64            `db:"kelas_id" json:"kelasId"`
	SubjectID   int64            `db:"subject_id" json:"subjectId"`
	TeacherID   int64            `db:"teacher_id" json:"teacherId"`
	Tanggal     time.Time        `db:"tanggal" json:"tanggal"`
	Status      AttendanceStatus `db:"status" json:"status"`
	Keterangan  *string          `db:"keterangan" json:"keterangan,omitempty"`
	SemesterID  *int64           `db:"semester_id" json:"semesterId"`
	TahunAjaran *string          `db:"tahun_ajaran" json:"tahunAjaran"`
	Semester    *int             `db:"semester" json:"semester"`
	CreatedAt   time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time        `db:"updated_at" json:"updatedAt"`
}

// AttendanceDetail is an attendance record joined with student, class and
// subject names for listings.
type AttendanceDetail struct {
	AttendanceRecord
	StudentNama string `db:"student_nama" json:"studentNama"`
	StudentNisn string `db:"student_nisn" json:"studentNisn"`
	ClassName   string `db:"class_name" json:"className"`
	SubjectNama string `db:"subject_nama" json:"subjectNama"`
}

// AttendanceFilter narrows attendance listings.
type AttendanceFilter struct {
	StudentID  *int64
	KelasID    *int64
	TeacherID  *int64
	SubjectID  *int64
	SemesterID *int64
	Status     AttendanceStatus
	DateFrom   *time.Time
	DateTo     *time.Time
}

// AbsenceCandidate is a (student, relation) pair missing an attendance row
// for the target date.
type AbsenceCandidate struct {
	StudentID int64 `db:"student_id"`
	KelasID   int64 `db:"kelas_id"`
	SubjectID int64 `db:"subject_id"`
	TeacherID int64 `db:"teacher_id"`
}

// AutoAlphaResult summarises one auto-absence run.
type AutoAlphaResult struct {
	Date        string  `json:"date"`
	Inserted    int     `json:"inserted"`
	SemesterID  *int64  `json:"semesterId"`
	TahunAjaran *string `json:"tahunAjaran"`
	Semester    *int    `json:"semester"`
}
