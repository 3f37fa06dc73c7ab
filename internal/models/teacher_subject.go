package models

import "time"

// TeacherSubject binds one teacher to one subject for one class. Identity is
// immutable; schedules and the auto-absence job are built on it.
type TeacherSubject struct {
	ID        int64     `db:"id" json:"id"`
	TeacherID int64     `db:"teacher_id" json:"teacherId"`
	SubjectID int64     `db:"subject_id" json:"subjectId"`
	KelasID   int64     `db:"kelas_id" json:"kelasId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// TeacherSubjectDetail enriches the relation with display names.
type TeacherSubjectDetail struct {
	TeacherSubject
	TeacherNama string `db:"teacher_nama" json:"teacherNama"`
	SubjectNama string `db:"subject_nama" json:"subjectNama"`
	ClassName   string `db:"class_name" json:"className"`
}

// TeacherSubjectFilter narrows relation listings.
type TeacherSubjectFilter struct {
	TeacherID *int64
	SubjectID *int64
	KelasID   *int64
}
