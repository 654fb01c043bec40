package model

//go:generate go run github.com/dmarkham/enumer -type Severity -trimprefix Severity -json -sql -output severity_enumer.go

// Severity ranks how bad an incident is.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
)
