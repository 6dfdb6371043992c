package catalog

import (
	"sort"
	"strconv"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/campusshare/campusshare/internal/app/models"
)

// UncategorizedKey is the sentinel bucket for resources whose grouping field
// is absent. It always sorts after every real key.
const UncategorizedKey = "Uncategorized"

// Group is one ordered bucket of a grouped catalog view.
type Group struct {
	Key       string            `json:"key"`
	Resources []models.Resource `json:"resources"`
}

// GroupBy buckets resources by keyFn, preserving each bucket's input order.
// Buckets are sorted by key with locale-aware comparison; the sentinel
// UncategorizedKey bucket, if present, is placed last.
func GroupBy(resources []models.Resource, keyFn func(*models.Resource) string) []Group {
	index := make(map[string]int)
	groups := make([]Group, 0)
	for i := range resources {
		key := keyFn(&resources[i])
		if key == "" {
			key = UncategorizedKey
		}
		at, ok := index[key]
		if !ok {
			at = len(groups)
			index[key] = at
			groups = append(groups, Group{Key: key})
		}
		groups[at].Resources = append(groups[at].Resources, resources[i])
	}

	cl := collate.New(language.English, collate.IgnoreCase)
	sort.SliceStable(groups, func(i, j int) bool {
		return groupLess(groups[i].Key, groups[j].Key, cl)
	})
	return groups
}

func groupLess(a, b string, cl *collate.Collator) bool {
	if a == UncategorizedKey {
		return false
	}
	if b == UncategorizedKey {
		return true
	}
	return cl.CompareString(a, b) < 0
}

// SubjectKey groups by subject code when present, else subject name.
func SubjectKey(r *models.Resource) string {
	if r.SubjectCode != "" {
		return r.SubjectCode
	}
	return r.Subject
}

// SemesterKey groups by semester label; unknown semesters fall into the
// sentinel bucket.
func SemesterKey(r *models.Resource) string {
	if r.Semester == models.SemesterUnknown {
		return ""
	}
	return "Semester " + strconv.Itoa(r.Semester)
}

// Paginate slices resources into a 1-indexed fixed-size page. Requesting a
// page past the end yields an empty slice, never an error.
func Paginate(resources []models.Resource, page, pageSize int) []models.Resource {
	if pageSize <= 0 {
		return []models.Resource{}
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= len(resources) {
		return []models.Resource{}
	}
	end := start + pageSize
	if end > len(resources) {
		end = len(resources)
	}
	return resources[start:end]
}

// TotalPages returns the number of pages needed to show n items, at least 1.
func TotalPages(n, pageSize int) int {
	if pageSize <= 0 || n <= 0 {
		return 1
	}
	return (n + pageSize - 1) / pageSize
}
