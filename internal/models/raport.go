package models

// RaportSubjectGrade aggregates a student's scores for one subject.
type RaportSubjectGrade struct {
	SubjectID   int64   `db:"subject_id" json:"subjectId"`
	SubjectNama string  `db:"subject_nama" json:"subjectNama"`
	RataRata    float64 `db:"rata_rata" json:"rataRata"`
	JumlahNilai int     `db:"jumlah_nilai" json:"jumlahNilai"`
	Verified    int     `db:"verified_count" json:"verified"`
}

// RaportAttendanceRecap counts a student's attendance records by status.
type RaportAttendanceRecap struct {
	Hadir int `db:"hadir" json:"hadir"`
	Izin  int `db:"izin" json:"izin"`
	Sakit int `db:"sakit" json:"sakit"`
	Alfa  int `db:"alfa" json:"alfa"`
}

// RaportSummary is the per-student recap served to walikelas and staff.
type RaportSummary struct {
	Student    *Student              `json:"student"`
	SemesterID *int64                `json:"semesterId,omitempty"`
	Grades     []RaportSubjectGrade  `json:"grades"`
	Attendance RaportAttendanceRecap `json:"attendance"`
}
