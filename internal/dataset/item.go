// Package dataset reads the YAML files tracks visualizes and merges reloads
// into the item pointers already bound to layers.
package dataset

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"
)

var (
	// ErrDuplicateID is returned when two items in one file share an id.
	ErrDuplicateID = errors.New("duplicate item id")
	// ErrInvalidItem is returned for items with a negative width or height.
	ErrInvalidItem = errors.New("invalid item")
)

// Item is one datum of a dataset. Which fields matter depends on the shape
// drawing it: dots use X and Y, segments all four extents, markers only X.
type Item struct {
	ID     string  `yaml:"id"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width,omitempty"`
	Height float64 `yaml:"height,omitempty"`
	Label  string  `yaml:"label,omitempty"`
	Color  string  `yaml:"color,omitempty"`
}

// File is the on-disk document.
type File struct {
	Items []*Item `yaml:"items"`
}

// Parse decodes a dataset document. Items without an id are named after
// their position ("#0", "#1", ...).
func Parse(r io.Reader) ([]*Item, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return []*Item{}, nil
		}
		return nil, fmt.Errorf("decoding dataset: %w", err)
	}

	seen := make(map[string]struct{}, len(f.Items))
	items := make([]*Item, 0, len(f.Items))
	for i, it := range f.Items {
		if it == nil {
			continue
		}
		if it.ID == "" {
			it.ID = "#" + strconv.Itoa(i)
		}
		if _, dup := seen[it.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, it.ID)
		}
		if it.Width < 0 || it.Height < 0 {
			return nil, fmt.Errorf("%w: %q has a negative extent", ErrInvalidItem, it.ID)
		}
		seen[it.ID] = struct{}{}
		items = append(items, it)
	}
	return items, nil
}

// ParseBytes is Parse over an in-memory document.
func ParseBytes(b []byte) ([]*Item, error) {
	return Parse(bytes.NewReader(b))
}

// Marshal encodes items as a dataset document.
func Marshal(items []*Item) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(File{Items: items}); err != nil {
		return nil, fmt.Errorf("encoding dataset: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding dataset: %w", err)
	}
	return buf.Bytes(), nil
}

// Clone returns deep copies of items.
func Clone(items []*Item) []*Item {
	out := make([]*Item, len(items))
	for i, it := range items {
		cp := *it
		out[i] = &cp
	}
	return out
}

// Span returns the smallest [lo, hi] covering every item's x extent, and
// false for an empty dataset.
func Span(items []*Item) (lo, hi float64, ok bool) {
	for i, it := range items {
		end := it.X + it.Width
		if i == 0 {
			lo, hi = it.X, end
			continue
		}
		lo, hi = min(lo, it.X), max(hi, end)
	}
	return lo, hi, len(items) > 0
}
