package audit

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// SDID constants for structured data IDs (RFC5424).
// 32473 is the Private Enterprise Number reserved for documentation (RFC5612).
const (
	PEN           = 32473
	SDIDIncident  = "incident@32473"
	SDIDAction    = "action@32473"
	SDIDClient    = "client@32473"
	SDIDRequest   = "request@32473"
	AppName       = "incidentd"
	timestampForm = "2006-01-02T15:04:05.000Z"
)

// Syslog facility constants
const (
	FacilityLocal0 = 16 // LOG_LOCAL0 - locally defined application messages
)

// Severity levels matching syslog (RFC5424)
type Severity int

const (
	SeverityEmergency Severity = iota // 0
	SeverityAlert                     // 1
	SeverityCritical                  // 2
	SeverityError                     // 3
	SeverityWarning                   // 4
	SeverityNotice                    // 5
	SeverityInfo                      // 6
	SeverityDebug                     // 7
)

// Event represents an audit event
type Event interface {
	MessageID() string
	Message() string
	Severity() Severity
	Facility() int
	StructuredData() map[string]map[string]string
}

// Logger handles audit logging in RFC5424 syslog format
type Logger struct {
	mu       sync.Mutex
	writer   io.Writer
	store    *Store
	errors   *slog.Logger
	hostname string
	pid      int
}

// NewLogger creates a new audit logger writing to w. store may be nil;
// failures to persist an event are reported through errors.
func NewLogger(w io.Writer, store *Store, errors *slog.Logger) *Logger {
	hostname, _ := os.Hostname()
	if errors == nil {
		errors = slog.Default()
	}
	return &Logger{
		writer:   w,
		store:    store,
		errors:   errors,
		hostname: hostname,
		pid:      os.Getpid(),
	}
}

// Log writes an audit event in RFC5424 syslog format and persists it to the
// store when one is configured. Logging to a nil Logger is a no-op.
func (l *Logger) Log(ctx context.Context, event Event) {
	if l == nil {
		return
	}

	now := time.Now().UTC()
	line := l.format(event, now)

	l.mu.Lock()
	_, _ = io.WriteString(l.writer, line)
	l.mu.Unlock()

	if l.store != nil {
		if err := l.store.Save(ctx, event, now); err != nil {
			l.errors.Error("audit: failed to save event", "msgid", event.MessageID(), "error", err)
		}
	}
}

// format renders an event as
// <PRI>VERSION TIMESTAMP HOSTNAME APP-NAME PROCID MSGID SD MSG
func (l *Logger) format(event Event, at time.Time) string {
	// Calculate PRI value: facility * 8 + severity
	pri := event.Facility()*8 + int(event.Severity())

	sd := formatStructuredData(event.StructuredData())
	if sd == "" {
		sd = "-"
	}

	hostname := l.hostname
	if hostname == "" {
		hostname = "-"
	}

	return fmt.Sprintf("<%d>1 %s %s %s %d %s %s %s\n",
		pri,
		at.Format(timestampForm),
		hostname,
		AppName,
		l.pid,
		event.MessageID(),
		sd,
		event.Message(),
	)
}

// formatStructuredData formats the structured data according to RFC5424.
// Elements and parameters are sorted so output is stable.
// Format: [sdid param1="value1" param2="value2"][sdid2 ...]
func formatStructuredData(sd map[string]map[string]string) string {
	if len(sd) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, sdid := range sortedKeys(sd) {
		params := sd[sdid]
		sb.WriteString("[")
		sb.WriteString(sdid)
		for _, key := range sortedKeys(params) {
			sb.WriteString(" ")
			sb.WriteString(key)
			sb.WriteString("=")
			sb.WriteString(escapeSDValue(params[key]))
		}
		sb.WriteString("]")
	}
	return sb.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// escapeSDValue escapes special characters in structured data values per RFC5424
func escapeSDValue(value string) string {
	// Escape backslash, double quote, and closing bracket
	value = strings.ReplaceAll(value, "\\", "\\\\")
	value = strings.ReplaceAll(value, "\"", "\\\"")
	value = strings.ReplaceAll(value, "]", "\\]")
	return "\"" + value + "\""
}
