package models

import "time"

// Hari names accepted for schedule entries.
var validHari = map[string]struct{}{
	"Senin": {}, "Selasa": {}, "Rabu": {}, "Kamis": {},
	"Jumat": {}, "Sabtu": {}, "Minggu": {},
}

// ValidHari reports whether the day name is one of Senin..Minggu.
func ValidHari(hari string) bool {
	_, ok := validHari[hari]
	return ok
}

// Conflict scopes, naming the sharing dimension that caused a collision.
const (
	ConflictScopeKelas          = "kelas"
	ConflictScopeTeacher        = "teacher"
	ConflictScopeTeacherSubject = "teacherSubject"
)

// ScheduleEntry is a weekly lesson slot. Class, subject and teacher are
// derived through the teacher_subjects relation, never stored directly.
type ScheduleEntry struct {
	ID               int64     `db:"id" json:"id"`
	TeacherSubjectID int64     `db:"teacher_subject_id" json:"teacherSubjectId"`
	SemesterID       int64     `db:"semester_id" json:"semesterId"`
	Hari             string    `db:"hari" json:"hari"`
	JamMulai         string    `db:"jam_mulai" json:"jamMulai"`
	JamSelesai       string    `db:"jam_selesai" json:"jamSelesai"`
	Ruangan          *string   `db:"ruangan" json:"ruangan,omitempty"`
	Keterangan       *string   `db:"keterangan" json:"keterangan,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time `db:"updated_at" json:"updatedAt"`
}

// ScheduleDetail joins a schedule entry with its relation, class, subject,
// teacher and semester display fields.
type ScheduleDetail struct {
	ScheduleEntry
	KelasID             int64  `db:"kelas_id" json:"kelasId"`
	SubjectID           int64  `db:"subject_id" json:"subjectId"`
	TeacherID           int64  `db:"teacher_id" json:"teacherId"`
	ClassName           string `db:"class_name" json:"className"`
	SubjectNama         string `db:"subject_nama" json:"subjectNama"`
	SubjectKode         string `db:"subject_kode" json:"subjectKode"`
	TeacherNama         string `db:"teacher_nama" json:"teacherNama"`
	TeacherNip          string `db:"teacher_nip" json:"teacherNip"`
	SemesterTahunAjaran string `db:"semester_tahun_ajaran" json:"semesterTahunAjaran"`
	SemesterKe          int    `db:"semester_ke" json:"semesterKe"`
}

// ScheduleFilter narrows schedule listings. WalikelasID filters through the
// homeroom assignment on the class, not a schedule column.
type ScheduleFilter struct {
	KelasID          *int64
	TeacherID        *int64
	TeacherSubjectID *int64
	SemesterID       *int64
	Hari             string
	WalikelasID      *int64
}

// ScheduleConflict is an existing entry that collides with a proposed one,
// tagged with the scope that triggered it.
type ScheduleConflict struct {
	ScheduleDetail
	ConflictScope string `json:"conflictScope"`
}

