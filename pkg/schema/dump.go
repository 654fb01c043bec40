package schema

import "github.com/doodlesbykumbi/incidentd/pkg/model"

// TimestampFormat is ISO-8601 with microseconds and an explicit offset.
const TimestampFormat = "2006-01-02T15:04:05.000000-07:00"

// Incident is the JSON representation of a stored incident.
type Incident struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	ReportedAt  string `json:"reported_at"`
}

// Dump renders a stored incident.
func Dump(inc model.Incident) Incident {
	return Incident{
		ID:          inc.ID,
		Title:       inc.Title,
		Description: inc.Description,
		Severity:    inc.Severity.String(),
		ReportedAt:  inc.ReportedAt.UTC().Format(TimestampFormat),
	}
}

// DumpAll renders incidents in the given order. The result is never nil.
func DumpAll(incs []model.Incident) []Incident {
	out := make([]Incident, 0, len(incs))
	for _, inc := range incs {
		out = append(out, Dump(inc))
	}
	return out
}
