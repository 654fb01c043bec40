package audit

import (
	"fmt"
	"strconv"
)

// Client identifies who issued the audited request.
type Client struct {
	IP        string
	RequestID string
}

func (c Client) who() string {
	if c.IP == "" {
		return "unknown client"
	}
	return c.IP
}

func (c Client) structuredData(sd map[string]map[string]string) {
	sd[SDIDClient] = map[string]string{"ip": c.IP}
	if c.RequestID != "" {
		sd[SDIDRequest] = map[string]string{"id": c.RequestID}
	}
}

func result(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

func severity(success bool) Severity {
	if success {
		return SeverityInfo
	}
	return SeverityWarning
}

// CreateEvent represents an incident creation audit event
type CreateEvent struct {
	Client
	IncidentID       int64
	IncidentSeverity string
	Success          bool
	ErrorMessage     string
}

func (e CreateEvent) MessageID() string {
	return "incident-create"
}

func (e CreateEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s created incident %d (%s)", e.who(), e.IncidentID, e.IncidentSeverity)
	}
	msg := fmt.Sprintf("%s tried to create an incident", e.who())
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e CreateEvent) Severity() Severity {
	return severity(e.Success)
}

func (e CreateEvent) Facility() int {
	return FacilityLocal0
}

func (e CreateEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDAction: {
			"operation": "create",
			"result":    result(e.Success),
		},
	}
	if e.Success {
		sd[SDIDIncident] = map[string]string{
			"id":       strconv.FormatInt(e.IncidentID, 10),
			"severity": e.IncidentSeverity,
		}
	}
	e.Client.structuredData(sd)
	return sd
}

// FetchEvent represents a single incident retrieval audit event
type FetchEvent struct {
	Client
	IncidentID   int64
	Success      bool
	ErrorMessage string
}

func (e FetchEvent) MessageID() string {
	return "incident-fetch"
}

func (e FetchEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s fetched incident %d", e.who(), e.IncidentID)
	}
	msg := fmt.Sprintf("%s tried to fetch incident %d", e.who(), e.IncidentID)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e FetchEvent) Severity() Severity {
	return severity(e.Success)
}

func (e FetchEvent) Facility() int {
	return FacilityLocal0
}

func (e FetchEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDIncident: {
			"id": strconv.FormatInt(e.IncidentID, 10),
		},
		SDIDAction: {
			"operation": "fetch",
			"result":    result(e.Success),
		},
	}
	e.Client.structuredData(sd)
	return sd
}

// DeleteEvent represents an incident deletion audit event
type DeleteEvent struct {
	Client
	IncidentID   int64
	Success      bool
	ErrorMessage string
}

func (e DeleteEvent) MessageID() string {
	return "incident-delete"
}

func (e DeleteEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s deleted incident %d", e.who(), e.IncidentID)
	}
	msg := fmt.Sprintf("%s tried to delete incident %d", e.who(), e.IncidentID)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e DeleteEvent) Severity() Severity {
	return severity(e.Success)
}

func (e DeleteEvent) Facility() int {
	return FacilityLocal0
}

func (e DeleteEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDIncident: {
			"id": strconv.FormatInt(e.IncidentID, 10),
		},
		SDIDAction: {
			"operation": "delete",
			"result":    result(e.Success),
		},
	}
	e.Client.structuredData(sd)
	return sd
}
