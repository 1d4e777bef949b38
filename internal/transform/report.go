package transform

import (
	"fmt"
	"sort"
	"strings"
)

// Rejection records one skipped record with enough context for manual
// triage.
type Rejection struct {
	Index   int
	Reason  string
	Missing []string
	Snippet string
}

// Report aggregates the outcome of a normalization run: accept/reject
// counts, per-field coercion failures, and dropped unknown source columns.
type Report struct {
	Accepted      int
	Rejected      int
	FieldFailures map[string]int
	UnknownFields map[string]int
	Rejections    []Rejection
}

// NewReport returns an empty report.
func NewReport() *Report {
	return &Report{
		FieldFailures: make(map[string]int),
		UnknownFields: make(map[string]int),
	}
}

// FailureCount sums all recorded per-field coercion failures.
func (r *Report) FailureCount() int {
	total := 0
	for _, n := range r.FieldFailures {
		total += n
	}
	return total
}

// Summary renders a one-line operator summary.
func (r *Report) Summary() string {
	return fmt.Sprintf("accepted=%d rejected=%d coercion_failures=%d unknown_columns=%d",
		r.Accepted, r.Rejected, r.FailureCount(), len(r.UnknownFields))
}

// FailureLines renders per-field failure counts in stable order, one line
// per field, for the end-of-run report.
func (r *Report) FailureLines() []string {
	fields := make([]string, 0, len(r.FieldFailures))
	for field := range r.FieldFailures {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	lines := make([]string, 0, len(fields))
	for _, field := range fields {
		lines = append(lines, fmt.Sprintf("%s: %d", field, r.FieldFailures[field]))
	}
	return lines
}

// snippet renders a short raw-record excerpt for rejection context.
func snippet(raw map[string]any) string {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		if b.Len() > 0 {
			b.WriteString(", ")
		}
		b.WriteString(fmt.Sprintf("%s=%v", k, raw[k]))
		if b.Len() > 160 {
			break
		}
	}
	s := b.String()
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
