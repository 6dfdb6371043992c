package catalog

import (
	"sort"
	"strings"

	"github.com/campusshare/campusshare/internal/app/models"
)

// Criteria is a conjunctive set of independently optional filters. The zero
// value matches everything.
type Criteria struct {
	// Semester filters by exact numeric equality when non-nil. Records with
	// an unknown semester (0) are only returned when 0 is selected
	// explicitly, or when no semester filter is set at all.
	Semester *int
	// Subject is a case-insensitive substring match on the subject field.
	Subject string
	// AcademicYear is a case-insensitive substring match.
	AcademicYear string
	// Term filters by exact term when set.
	Term models.Term
	// Query is a case-insensitive free-text search over file name and subject.
	Query string
	// FileType matches "image" against any image/* MIME type; any other
	// token matches a MIME-type substring or a file name suffix.
	FileType string
}

// Matches reports whether a single resource satisfies every set criterion.
func (c Criteria) Matches(r *models.Resource) bool {
	if c.Semester != nil && r.Semester != *c.Semester {
		return false
	}
	if c.Subject != "" && !containsFold(r.Subject, c.Subject) {
		return false
	}
	if c.AcademicYear != "" && !containsFold(r.AcademicYear, c.AcademicYear) {
		return false
	}
	if c.Term != "" && r.Term != c.Term {
		return false
	}
	if c.Query != "" {
		q := strings.TrimSpace(c.Query)
		if q != "" && !containsFold(r.FileName, q) && !containsFold(r.Subject, q) {
			return false
		}
	}
	if c.FileType != "" && !matchesFileType(r, c.FileType) {
		return false
	}
	return true
}

// Filter applies the criteria over an in-memory snapshot and returns the
// matches ordered most-recent-first by normalized millisecond timestamps.
// Records with equal timestamps keep their snapshot order. The input slice is
// not modified.
func Filter(resources []models.Resource, c Criteria) []models.Resource {
	out := make([]models.Resource, 0, len(resources))
	for i := range resources {
		if c.Matches(&resources[i]) {
			out = append(out, resources[i])
		}
	}
	SortNewestFirst(out)
	return out
}

// SortNewestFirst orders resources by creation time descending, in place.
// The sort is stable so snapshot insertion order breaks ties.
func SortNewestFirst(resources []models.Resource) {
	sort.SliceStable(resources, func(i, j int) bool {
		return resources[i].UploadedAtMillis() > resources[j].UploadedAtMillis()
	})
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func matchesFileType(r *models.Resource, token string) bool {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return true
	}
	fileType := strings.ToLower(r.FileType)
	if token == "image" {
		return strings.HasPrefix(fileType, "image/")
	}
	return strings.Contains(fileType, token) ||
		strings.HasSuffix(strings.ToLower(r.FileName), token)
}
