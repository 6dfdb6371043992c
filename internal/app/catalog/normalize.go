package catalog

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/campusshare/campusshare/internal/app/models"
)

// Defaults applied when a raw document is missing a field.
const (
	DefaultFileName = "Untitled"
	DefaultFileType = "file"
)

// semesterKeys lists every spelling the semester field has had across the
// application's history, in lookup order.
var semesterKeys = []string{"semester", "sem", "semesterNo", "semNo", "semester_number", "semesterIndex"}

var firstInteger = regexp.MustCompile(`\d+`)

// Normalize converts one raw catalog document into the canonical Resource
// shape. It is total: any field may be missing or hold an unexpected type and
// the result is still a fully populated record with defined defaults.
func Normalize(id string, raw bson.M) models.Resource {
	r := models.Resource{
		ID:           id,
		FileName:     stringField(raw, "fileName", "name"),
		FileURL:      stringField(raw, "fileUrl", "url"),
		FileType:     stringField(raw, "fileType"),
		UploadedBy:   stringField(raw, "uploadedBy", "teacherId"),
		UploaderName: stringField(raw, "uploaderName", "teacherName"),
		Role:         models.Role(stringField(raw, "role")),
		Semester:     normalizeSemester(raw),
		Subject:      stringField(raw, "subject"),
		SubjectCode:  stringField(raw, "subjectCode"),
		AcademicYear: stringField(raw, "academicYear"),
		Term:         models.Term(strings.ToLower(stringField(raw, "term"))),
		DeleteToken:  stringField(raw, "deleteToken"),
		Downloads:    intField(raw, "downloads"),
		UploadedAt:   normalizeTime(raw, "uploadedAt", "timestamp"),
	}

	if r.FileName == "" {
		r.FileName = DefaultFileName
	}
	if r.FileType == "" {
		r.FileType = DefaultFileType
	}
	if !models.ValidRole(r.Role) {
		// Legacy records predate the role snapshot; treat them as
		// teacher uploads for display purposes only.
		r.Role = models.RoleTeacher
	}
	if !models.ValidTerm(r.Term) {
		r.Term = ""
	}
	if r.Downloads < 0 {
		r.Downloads = 0
	}

	return r
}

// NormalizeAll converts a slice of raw documents, preserving input order.
// Each document's id is read from its _id field.
func NormalizeAll(raws []bson.M) []models.Resource {
	resources := make([]models.Resource, 0, len(raws))
	for _, raw := range raws {
		resources = append(resources, Normalize(DocumentID(raw), raw))
	}
	return resources
}

// DocumentID extracts a document's identifier whether it was stored as an
// ObjectID or a plain string.
func DocumentID(raw bson.M) string {
	switch v := raw["_id"].(type) {
	case primitive.ObjectID:
		return v.Hex()
	case string:
		return v
	default:
		return ""
	}
}

// stringField returns the first non-empty string value among keys.
func stringField(raw bson.M, keys ...string) string {
	for _, key := range keys {
		if v, ok := raw[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

func intField(raw bson.M, key string) int64 {
	switch v := raw[key].(type) {
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	default:
		return 0
	}
}

// normalizeSemester resolves the semester across all legacy spellings. Numeric
// values are used directly; strings contribute their first integer substring.
// Anything outside 1..8 collapses to SemesterUnknown.
func normalizeSemester(raw bson.M) int {
	var semester int
	for _, key := range semesterKeys {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		switch n := v.(type) {
		case int:
			semester = n
		case int32:
			semester = int(n)
		case int64:
			semester = int(n)
		case float64:
			semester = int(n)
		case string:
			if m := firstInteger.FindString(n); m != "" {
				semester, _ = strconv.Atoi(m)
			}
		}
		break
	}
	if semester < models.MinSemester || semester > models.MaxSemester {
		return models.SemesterUnknown
	}
	return semester
}

// normalizeTime accepts the store's native timestamp representation as well as
// plain date values and millisecond counts, so records written by different
// application generations compare consistently.
func normalizeTime(raw bson.M, keys ...string) time.Time {
	for _, key := range keys {
		switch v := raw[key].(type) {
		case primitive.DateTime:
			return v.Time()
		case time.Time:
			return v
		case int64:
			return time.UnixMilli(v)
		case float64:
			return time.UnixMilli(int64(v))
		case primitive.Timestamp:
			return time.Unix(int64(v.T), 0)
		}
	}
	return time.Time{}
}
