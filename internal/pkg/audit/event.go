package audit

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Category determines formatting, console color, and sink routing of an event.
type Category string

const (
	CategoryError      Category = "ERROR"
	CategoryWarn       Category = "WARN"
	CategoryInfo       Category = "INFO"
	CategorySuccess    Category = "SUCCESS"
	CategoryDebug      Category = "DEBUG"
	CategoryUserAction Category = "USER_ACTION"
	CategoryHTTP       Category = "HTTP"
	CategoryAuth       Category = "AUTH"
	CategoryDatabase   Category = "DATABASE"
)

// Event is a single audit record. It is built at the call site, written to its
// sinks, and discarded; nothing keeps a history in memory.
type Event struct {
	Category  Category
	Timestamp time.Time
	Message   string
	Context   map[string]any

	// ErrDetail and Stack form the error segment appended to ERROR records.
	ErrDetail string
	Stack     string

	// Status drives the HTTP color rule, Result the AUTH/DATABASE one.
	Status int
	Result string
}

// ANSI color codes used for the console sink.
const (
	colorReset   = "\033[0m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorBlue    = "\033[34m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
)

// timestampLayout is ISO-8601 with millisecond precision, always UTC.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// sinkKeyword maps a category to the discriminator used in sink file names.
// INFO and SUCCESS share the general sink.
func sinkKeyword(c Category) string {
	switch c {
	case CategoryError:
		return "errors"
	case CategoryWarn:
		return "warnings"
	case CategoryUserAction:
		return "user-actions"
	case CategoryHTTP:
		return "http"
	case CategoryAuth:
		return "auth"
	case CategoryDatabase:
		return "database"
	case CategoryDebug:
		return "debug"
	default:
		return "general"
	}
}

// colorFor selects the console color. HTTP colors by status code, AUTH and
// DATABASE by result; the remaining categories have a fixed severity color.
func colorFor(e Event) string {
	switch e.Category {
	case CategoryHTTP:
		switch {
		case e.Status >= 400:
			return colorRed
		case e.Status >= 300:
			return colorYellow
		default:
			return colorGreen
		}
	case CategoryAuth, CategoryDatabase:
		if e.Result == "success" {
			return colorGreen
		}
		return colorRed
	case CategoryError:
		return colorRed
	case CategoryWarn:
		return colorYellow
	case CategorySuccess:
		return colorGreen
	case CategoryDebug:
		return colorMagenta
	case CategoryUserAction:
		return colorBlue
	default:
		return colorCyan
	}
}

// render produces the record text shared by both sinks. The context segment is
// only appended when the (already sanitized) context is non-empty; serialization
// failures degrade to a best-effort string and never fail the event.
func render(e Event) string {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(e.Timestamp.UTC().Format(timestampLayout))
	b.WriteString("] [")
	b.WriteString(string(e.Category))
	b.WriteString("] ")
	b.WriteString(e.Message)

	if len(e.Context) > 0 {
		b.WriteString(" | Context: ")
		if data, err := json.Marshal(e.Context); err == nil {
			b.Write(data)
		} else {
			b.WriteString(fmt.Sprintf("%v", e.Context))
		}
	}

	if e.ErrDetail != "" {
		b.WriteString("\nError: ")
		b.WriteString(e.ErrDetail)
	}
	if e.Stack != "" {
		b.WriteString("\n")
		b.WriteString(strings.TrimRight(e.Stack, "\n"))
	}

	return b.String()
}
