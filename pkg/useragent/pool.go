package useragent

import (
	"crypto/rand"
	"math/big"
)

// Default is the desktop browser identity sent to the dictionary.
const Default = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.3"

// Pool holds the User-Agent strings a request may present.
type Pool struct {
	uas []string
}

// NewPool creates a pool from uas, skipping blank entries. An empty result
// falls back to Default.
func NewPool(uas []string) *Pool {
	copied := make([]string, 0, len(uas))
	for _, ua := range uas {
		if ua != "" {
			copied = append(copied, ua)
		}
	}
	if len(copied) == 0 {
		copied = []string{Default}
	}
	return &Pool{uas: copied}
}

// Pick returns a User-Agent chosen uniformly with crypto/rand. A pool of one
// always returns that entry.
func (p *Pool) Pick() string {
	switch len(p.uas) {
	case 0:
		return ""
	case 1:
		return p.uas[0]
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(p.uas))))
	if err != nil {
		return p.uas[0]
	}
	return p.uas[n.Int64()]
}

// All returns a copy of the pool's entries.
func (p *Pool) All() []string {
	copied := make([]string, len(p.uas))
	copy(copied, p.uas)
	return copied
}
