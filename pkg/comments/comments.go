// Package comments models the QC annotations stored in a document row's
// Comments cell.
//
// A cell holds pipe-separated entries, each tied to one page and field:
//
//	P1: Name: Name is required | P2: Total: The sum of the fields is 30.0, but the total is 31.0.
//
// A page and field pair identifies a comment. Adding a second comment for the
// same pair replaces the first, so a row never carries two notes for one field.
package comments

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const separator = " | "

// Identity is the (page, field) key of a comment.
type Identity struct {
	Page  int
	Field string
}

// String returns the identity in cell form, "P{page}: {field}".
func (id Identity) String() string {
	return fmt.Sprintf("P%d: %s", id.Page, id.Field)
}

// ParseIdentity parses "P{page}: {field}".
func ParseIdentity(s string) (Identity, bool) {
	page, rest, ok := splitPage(strings.TrimSpace(s))
	if !ok {
		return Identity{}, false
	}
	field := strings.TrimSpace(rest)
	if field == "" {
		return Identity{}, false
	}
	return Identity{Page: page, Field: field}, true
}

// Comment is a single note attached to a field on a page.
type Comment struct {
	Page  int    `json:"page"`
	Field string `json:"field"`
	Text  string `json:"text"`
}

// Identity returns the comment's key.
func (c Comment) Identity() Identity {
	return Identity{Page: c.Page, Field: c.Field}
}

// String returns the comment in cell form, "P{page}: {field}: {text}".
func (c Comment) String() string {
	return fmt.Sprintf("P%d: %s: %s", c.Page, c.Field, c.Text)
}

// Comments is the set of comments of one row, at most one per Identity.
// Iteration follows insertion order; replacing a comment keeps its position.
type Comments struct {
	order []Identity
	byID  map[Identity]Comment
}

// New returns an empty set.
func New() *Comments {
	return &Comments{byID: make(map[Identity]Comment)}
}

// Parse reads a Comments cell. Malformed entries are dropped and a repeated
// identity keeps its last text.
func Parse(cell string) *Comments {
	c := New()
	if strings.TrimSpace(cell) == "" {
		return c
	}

	for _, part := range strings.Split(cell, "|") {
		token := strings.TrimSpace(part)
		page, rest, ok := splitPage(token)
		if !ok {
			continue
		}
		rest = strings.TrimSpace(rest)
		if rest == "" {
			continue
		}

		field, text := rest, ""
		if i := strings.Index(rest, ":"); i >= 0 {
			field = strings.TrimSpace(rest[:i])
			text = strings.TrimSpace(rest[i+1:])
		}
		if field == "" {
			continue
		}
		c.Add(Comment{Page: page, Field: field, Text: text})
	}
	return c
}

// splitPage splits "P{digits}:{rest}".
func splitPage(token string) (int, string, bool) {
	i := strings.Index(token, ":")
	if i < 0 {
		return 0, "", false
	}
	prefix := strings.TrimSpace(token[:i])
	if len(prefix) < 2 || prefix[0] != 'P' {
		return 0, "", false
	}
	digits := prefix[1:]
	for j := 0; j < len(digits); j++ {
		if digits[j] < '0' || digits[j] > '9' {
			return 0, "", false
		}
	}
	page, err := strconv.Atoi(digits)
	if err != nil {
		return 0, "", false
	}
	return page, token[i+1:], true
}

// Add inserts c, replacing any comment with the same identity.
func (cs *Comments) Add(c Comment) {
	id := c.Identity()
	if _, exists := cs.byID[id]; !exists {
		cs.order = append(cs.order, id)
	}
	cs.byID[id] = c
}

// Remove deletes the comment with identity id and reports whether it existed.
func (cs *Comments) Remove(id Identity) bool {
	if _, exists := cs.byID[id]; !exists {
		return false
	}
	delete(cs.byID, id)
	for i, existing := range cs.order {
		if existing == id {
			cs.order = append(cs.order[:i], cs.order[i+1:]...)
			break
		}
	}
	return true
}

// Get returns the comment with identity id.
func (cs *Comments) Get(id Identity) (Comment, bool) {
	c, ok := cs.byID[id]
	return c, ok
}

// ForPage returns field name to text for the comments on page, skipping
// comments without text.
func (cs *Comments) ForPage(page int) map[string]string {
	out := make(map[string]string)
	for _, id := range cs.order {
		c := cs.byID[id]
		if c.Page == page && c.Text != "" {
			out[c.Field] = c.Text
		}
	}
	return out
}

// Len returns the number of comments.
func (cs *Comments) Len() int { return len(cs.order) }

// Ordered returns the comments in insertion order.
func (cs *Comments) Ordered() []Comment {
	out := make([]Comment, 0, len(cs.order))
	for _, id := range cs.order {
		out = append(out, cs.byID[id])
	}
	return out
}

// All returns the comments sorted by page then field.
func (cs *Comments) All() []Comment {
	out := cs.Ordered()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Page != out[j].Page {
			return out[i].Page < out[j].Page
		}
		return out[i].Field < out[j].Field
	})
	return out
}

// String serializes the comments for the Comments cell: entries with text,
// sorted by page then field, joined by " | ". A "|" inside a text is written
// as "/" so the cell still parses.
func (cs *Comments) String() string {
	parts := make([]string, 0, len(cs.order))
	for _, c := range cs.All() {
		if strings.TrimSpace(c.Text) == "" {
			continue
		}
		c.Text = strings.ReplaceAll(c.Text, "|", "/")
		parts = append(parts, c.String())
	}
	return strings.Join(parts, separator)
}
