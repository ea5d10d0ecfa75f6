// Package report renders the lookup history for the history command.
package report

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"text/tabwriter"
	"text/template"
	"time"

	"github.com/atone/alfred-youdao/internal/storage"
)

// topQueries bounds Summary.TopQueries.
const topQueries = 5

// QueryCount is how often a query was looked up.
type QueryCount struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

// Summary aggregates a set of lookups.
type Summary struct {
	TotalLookups    int            `json:"total_lookups"`
	Fallbacks       int            `json:"fallbacks"`
	Errors          int            `json:"errors"`
	Blocked         int            `json:"blocked"`
	Languages       map[string]int `json:"languages"`
	StatusCodes     map[int]int    `json:"status_codes"`
	BlockedBySource map[string]int `json:"blocked_by_source"`
	TopQueries      []QueryCount   `json:"top_queries"`
	AvgDuration     time.Duration  `json:"avg_duration"`
	StartTime       time.Time      `json:"start_time"`
	EndTime         time.Time      `json:"end_time"`
}

// GenerateSummary aggregates lookups.
func GenerateSummary(lookups []*storage.Lookup) Summary {
	s := Summary{
		Languages:       make(map[string]int),
		StatusCodes:     make(map[int]int),
		BlockedBySource: make(map[string]int),
		TopQueries:      []QueryCount{},
	}
	if len(lookups) == 0 {
		return s
	}

	s.StartTime = lookups[0].CreatedAt
	s.EndTime = lookups[0].CreatedAt

	var total time.Duration
	queries := make(map[string]int)
	for _, l := range lookups {
		s.TotalLookups++
		if l.Fallback {
			s.Fallbacks++
		}
		if l.Error != "" {
			s.Errors++
		}
		if l.BlockedBy != "" {
			s.Blocked++
			s.BlockedBySource[l.BlockedBy]++
		}
		if l.StatusCode > 0 {
			s.StatusCodes[l.StatusCode]++
		}
		s.Languages[l.Language]++
		queries[l.Query]++
		total += l.Duration

		if l.CreatedAt.Before(s.StartTime) {
			s.StartTime = l.CreatedAt
		}
		if l.CreatedAt.After(s.EndTime) {
			s.EndTime = l.CreatedAt
		}
	}
	s.AvgDuration = total / time.Duration(len(lookups))

	for q, n := range queries {
		s.TopQueries = append(s.TopQueries, QueryCount{Query: q, Count: n})
	}
	slices.SortFunc(s.TopQueries, func(a, b QueryCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Query, b.Query)
	})
	if len(s.TopQueries) > topQueries {
		s.TopQueries = s.TopQueries[:topQueries]
	}
	return s
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("report: encode json: %w", err)
	}
	return nil
}

const summaryTmpl = `Lookup History Summary
----------------------
Time:        {{.StartTime.Format "2006-01-02 15:04:05"}} - {{.EndTime.Format "2006-01-02 15:04:05"}}
Lookups:     {{.TotalLookups}}
Fallbacks:   {{.Fallbacks}}
Errors:      {{.Errors}}
Avg Fetch:   {{.AvgDuration}}

Languages:
{{- range $lang, $count := .Languages}}
  {{$lang}}: {{$count}}
{{- else}}
  None
{{- end}}

Status Codes:
{{- range $code, $count := .StatusCodes}}
  {{$code}}: {{$count}}
{{- else}}
  None
{{- end}}

Blocked: {{.Blocked}}
{{- range $src, $count := .BlockedBySource}}
  {{$src}}: {{$count}}
{{- end}}

Top Queries:
{{- range .TopQueries}}
  {{.Query}}: {{.Count}}
{{- else}}
  None
{{- end}}
`

var summaryTemplate = template.Must(template.New("summary").Parse(summaryTmpl))

// WriteText writes a human-readable summary.
func WriteText(w io.Writer, summary Summary) error {
	if err := summaryTemplate.Execute(w, summary); err != nil {
		return fmt.Errorf("report: render summary: %w", err)
	}
	return nil
}

// WriteLookups writes one line per lookup, newest first as given.
func WriteLookups(w io.Writer, lookups []*storage.Lookup) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tQUERY\tLANG\tSTATUS\tITEMS\tRESULT")
	for _, l := range lookups {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
			l.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			l.Query, l.Language, l.StatusCode, l.Items, outcome(l))
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("report: write lookups: %w", err)
	}
	return nil
}

func outcome(l *storage.Lookup) string {
	switch {
	case l.BlockedBy != "":
		return "blocked by " + l.BlockedBy
	case l.Error != "":
		return "error: " + l.Error
	case l.Fallback:
		return "no result"
	default:
		return l.TopTitle
	}
}
