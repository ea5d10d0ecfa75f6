package storage

import (
	"context"
	"time"
)

// Lookup is the history record of one dictionary lookup.
type Lookup struct {
	ID         string        `json:"id"`
	Query      string        `json:"query"`
	Language   string        `json:"language"`
	URL        string        `json:"url"`
	StatusCode int           `json:"status_code"`
	Items      int           `json:"items"`
	TopTitle   string        `json:"top_title,omitempty"`
	Fallback   bool          `json:"fallback"`
	BlockedBy  string        `json:"blocked_by,omitempty"` // e.g. "Cloudflare"
	Proxy      string        `json:"proxy,omitempty"`      // redacted proxy URL, empty for direct
	Duration   time.Duration `json:"duration"`
	CreatedAt  time.Time     `json:"created_at"`
	Error      string        `json:"error,omitempty"` // non-empty if the fetch failed before a response
}

// Filter selects history records. Results are ordered newest first.
type Filter struct {
	Query        string
	FallbackOnly bool
	Since        *time.Time
	Limit        int
	Offset       int
}

// Backend stores and queries lookup history.
type Backend interface {
	Save(ctx context.Context, lookup *Lookup) error
	Query(ctx context.Context, filter Filter) ([]*Lookup, error)
	Close() error
}
