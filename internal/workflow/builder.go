// Package workflow builds the result list printed for the launcher.
package workflow

import (
	"encoding/json"
	"fmt"
	"io"
)

// Builder accumulates items in insertion order. It is not safe for
// concurrent use.
type Builder struct {
	items []Item
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Add appends an item carrying payload together with the fixed speak and
// copy actions derived from it. Items are valid unless Invalid is passed.
func (b *Builder) Add(title, subtitle string, payload Payload, opts ...ItemOption) {
	it := Item{
		Title:    title,
		Subtitle: subtitle,
		Payload:  payload,
		Icon:     IconDefault,
		Mods:     defaultMods(payload),
		Valid:    true,
	}
	for _, opt := range opts {
		opt(&it)
	}
	b.items = append(b.items, it)
}

// Len returns the number of items added so far.
func (b *Builder) Len() int {
	return len(b.items)
}

// Items returns a copy of the items added so far.
func (b *Builder) Items() []Item {
	out := make([]Item, len(b.items))
	copy(out, b.items)
	return out
}

type document struct {
	Items []object `json:"items"`
}

// Encode writes {"items": [...]} to w, indented, with non-ASCII text left
// unescaped.
func (b *Builder) Encode(w io.Writer) error {
	doc := document{Items: make([]object, 0, len(b.items))}
	for _, it := range b.items {
		doc.Items = append(doc.Items, filter(it.fields()))
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("workflow: encode items: %w", err)
	}
	return nil
}
