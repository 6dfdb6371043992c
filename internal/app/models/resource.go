package models

import (
	"time"
)

// Resource is the canonical catalog record describing one uploaded study file.
// Stored documents drifted across the application's history (fileUrl vs url,
// uploadedAt vs timestamp, uploadedBy vs teacherId, several semester field
// spellings); raw documents never cross the repository boundary without going
// through catalog.Normalize, which always yields this shape.
type Resource struct {
	ID           string    `json:"id" bson:"-"`
	FileName     string    `json:"fileName" bson:"fileName"`
	FileURL      string    `json:"fileUrl" bson:"fileUrl"`
	FileType     string    `json:"fileType" bson:"fileType"`
	UploadedBy   string    `json:"uploadedBy" bson:"uploadedBy"`
	UploaderName string    `json:"uploaderName,omitempty" bson:"uploaderName,omitempty"`
	Role         Role      `json:"role" bson:"role"`
	Semester     int       `json:"semester" bson:"semester"`
	Subject      string    `json:"subject" bson:"subject"`
	SubjectCode  string    `json:"subjectCode,omitempty" bson:"subjectCode,omitempty"`
	AcademicYear string    `json:"academicYear" bson:"academicYear"`
	Term         Term      `json:"term" bson:"term"`
	DeleteToken  string    `json:"-" bson:"deleteToken,omitempty"`
	Downloads    int64     `json:"downloads" bson:"downloads"`
	UploadedAt   time.Time `json:"uploadedAt" bson:"uploadedAt"`
}

// UploadedAtMillis returns the creation time as Unix milliseconds, 0 when the
// record carries no timestamp. Catalog ordering compares these values.
func (r *Resource) UploadedAtMillis() int64 {
	if r.UploadedAt.IsZero() {
		return 0
	}
	return r.UploadedAt.UnixMilli()
}

// SemesterUnknown is the sentinel semester for records whose semester field is
// missing, unparseable or out of the valid 1..8 range. It groups and sorts
// separately from real semesters.
const SemesterUnknown = 0

// MinSemester and MaxSemester bound the valid semester range.
const (
	MinSemester = 1
	MaxSemester = 8
)
