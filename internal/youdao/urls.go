package youdao

import (
	"net/url"
	"strings"
)

const (
	DefaultDictURL    = "https://mobile.youdao.com/dict"
	DefaultPreviewURL = "https://www.youdao.com/w/"
)

// Endpoints are the dictionary page fetched for results and the
// human-facing page shown in previews.
type Endpoints struct {
	Dict    string
	Preview string
}

// DefaultEndpoints returns the public Youdao hosts.
func DefaultEndpoints() Endpoints {
	return Endpoints{Dict: DefaultDictURL, Preview: DefaultPreviewURL}
}

func (e Endpoints) withDefaults() Endpoints {
	if e.Dict == "" {
		e.Dict = DefaultDictURL
	}
	if e.Preview == "" {
		e.Preview = DefaultPreviewURL
	}
	return e
}

// RequestURL builds the dictionary page URL for query.
func (e Endpoints) RequestURL(query string, lang Language) string {
	v := url.Values{}
	v.Set("le", string(lang))
	v.Set("q", query)
	return e.withDefaults().Dict + "?" + v.Encode()
}

// PreviewURL builds the preview URL for query. Slashes in the query are
// kept as path separators.
func (e Endpoints) PreviewURL(query string) string {
	segments := strings.Split(query, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return e.withDefaults().Preview + strings.Join(segments, "/")
}
