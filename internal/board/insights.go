package board

import "huntboard/internal/models"

// Insights are aggregate counts over a user's full collection. They are
// computed from the unfiltered slice; board filters and hidden columns never
// change these numbers.
type Insights struct {
	Total      int            `json:"total"`
	Active     int            `json:"active"`
	Offers     int            `json:"offers"`
	Rejections int            `json:"rejections"`
	ByStatus   map[string]int `json:"by_status"`
	ByJobType  map[string]int `json:"by_job_type"`
}

// ComputeInsights reduces the collection in one pass. Active means the
// application still needs attention: applied, in screening or interviewing.
func ComputeInsights(apps []models.Application) Insights {
	in := Insights{
		ByStatus:  make(map[string]int, len(models.AllStatuses)),
		ByJobType: make(map[string]int, len(models.AllJobTypes)),
	}
	for i := range apps {
		a := &apps[i]
		in.Total++
		in.ByStatus[string(a.Status)]++
		in.ByJobType[string(a.JobType)]++

		switch a.Status {
		case models.StatusApplied, models.StatusScreening, models.StatusInterviewing:
			in.Active++
		case models.StatusOffer:
			in.Offers++
		case models.StatusRejected:
			in.Rejections++
		}
	}
	return in
}
