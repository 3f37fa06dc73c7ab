package models

import "time"

// Grade ("nilai") is a scored assessment for a student in a subject.
// Verification is performed by the class's walikelas.
type Grade struct {
	ID          int64     `db:"id" json:"id"`
	StudentID   int64     `db:"student_id" json:"studentId"`
	SubjectID   int64     `db:"subject_id" json:"subjectId"`
	TeacherID   int64     `db:"teacher_id" json:"teacherId"`
	SemesterID  int64     `db:"semester_id" json:"semesterId"`
	Jenis       string    `db:"jenis" json:"jenis"`
	Nilai       float64   `db:"nilai" json:"nilai"`
	Keterangan  *string   `db:"keterangan" json:"keterangan,omitempty"`
	Verified    bool      `db:"verified" json:"verified"`
	VerifiedBy  *string   `db:"verified_by" json:"verifiedBy,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// GradeDetail joins a grade with display names for read-side listings.
type GradeDetail struct {
	Grade
	StudentNama string `db:"student_nama" json:"studentNama"`
	SubjectNama string `db:"subject_nama" json:"subjectNama"`
	TeacherNama string `db:"teacher_nama" json:"teacherNama"`
	TahunAjaran string `db:"tahun_ajaran" json:"tahunAjaran"`
	SemesterKe  int    `db:"semester_ke" json:"semesterKe"`
}

// GradeFilter narrows grade listings.
type GradeFilter struct {
	StudentID   *int64
	TeacherID   *int64
	SubjectID   *int64
	SemesterID  *int64
	WalikelasID *int64
	TahunAjaran string
	Semester    *int
}
