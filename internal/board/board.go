// Package board implements the pure kanban view engine: filtering, sorting,
// grouping and aggregation over a user's applications. It never touches the
// database; the HTTP layer and the CLI both feed it the same slices.
package board

import (
	"sort"
	"strings"
	"time"

	"huntboard/internal/models"
)

// Filter is a conjunctive view filter. Zero values mean "no constraint".
type Filter struct {
	// Query matches as a case-insensitive substring against job title,
	// company and location.
	Query string
	// From and Until bound the applied date inclusively. Until is normalized
	// to the end of its day so a date-only value still matches that day's
	// applications.
	From  time.Time
	Until time.Time

	JobType   models.JobType
	Status    models.Status
	LikedOnly bool
}

// Sort orders a filtered view by one key.
type Sort struct {
	// By is one of "date_applied", "job_title", "company". Anything else
	// falls back to date_applied.
	By string
	// Desc inverts the order.
	Desc bool
}

// endOfDay pushes t to the last representable instant of its calendar day.
func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

func (f Filter) matches(a *models.Application) bool {
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(a.JobTitle), q) &&
			!strings.Contains(strings.ToLower(a.Company), q) &&
			!strings.Contains(strings.ToLower(a.Location), q) {
			return false
		}
	}

	applied := a.AppliedAt()
	if !f.From.IsZero() && applied.Before(f.From) {
		return false
	}
	if !f.Until.IsZero() && applied.After(endOfDay(f.Until)) {
		return false
	}

	if f.JobType != "" && a.JobType != f.JobType {
		return false
	}
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if f.LikedOnly && !a.IsLiked {
		return false
	}
	return true
}

// Apply returns the applications passing every set constraint, in input
// order. The input slice is not modified.
func (f Filter) Apply(apps []models.Application) []models.Application {
	out := make([]models.Application, 0, len(apps))
	for i := range apps {
		if f.matches(&apps[i]) {
			out = append(out, apps[i])
		}
	}
	return out
}

// Apply sorts a copy of apps by the configured key. String keys compare
// case-insensitively; tie order is unspecified.
func (s Sort) Apply(apps []models.Application) []models.Application {
	out := make([]models.Application, len(apps))
	copy(out, apps)

	var less func(i, j int) bool
	switch s.By {
	case "job_title":
		less = func(i, j int) bool {
			return strings.ToLower(out[i].JobTitle) < strings.ToLower(out[j].JobTitle)
		}
	case "company":
		less = func(i, j int) bool {
			return strings.ToLower(out[i].Company) < strings.ToLower(out[j].Company)
		}
	default: // date_applied
		less = func(i, j int) bool {
			return out[i].AppliedAt().Before(out[j].AppliedAt())
		}
	}

	if s.Desc {
		inner := less
		less = func(i, j int) bool { return inner(j, i) }
	}
	sort.Slice(out, less)
	return out
}

// Column is one rendered status lane of the board.
type Column struct {
	Status       models.Status        `json:"status"`
	Applications []models.Application `json:"applications"`
}

// Group partitions apps into status columns, preserving input order within
// each column. visible narrows which columns are rendered; nil or empty
// means all eight. Hiding a column never changes what the other columns or
// the insights see.
func Group(apps []models.Application, visible []models.Status) []Column {
	want := make(map[models.Status]bool, len(visible))
	for _, s := range visible {
		want[s] = true
	}

	byStatus := make(map[models.Status][]models.Application, len(models.AllStatuses))
	for i := range apps {
		byStatus[apps[i].Status] = append(byStatus[apps[i].Status], apps[i])
	}

	columns := make([]Column, 0, len(models.AllStatuses))
	for _, s := range models.AllStatuses {
		if len(want) > 0 && !want[s] {
			continue
		}
		col := Column{Status: s, Applications: byStatus[s]}
		if col.Applications == nil {
			col.Applications = []models.Application{}
		}
		columns = append(columns, col)
	}
	return columns
}

// View is the full board response: filtered, sorted, grouped.
type View struct {
	Columns []Column `json:"columns"`
	Total   int      `json:"total"`
}

// Build runs the whole pipeline in the canonical order.
func Build(apps []models.Application, f Filter, s Sort, visible []models.Status) View {
	rows := s.Apply(f.Apply(apps))
	return View{
		Columns: Group(rows, visible),
		Total:   len(rows),
	}
}
