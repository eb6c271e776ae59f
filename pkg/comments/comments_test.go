package comments

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_LastOccurrenceWins(t *testing.T) {
	c := Parse("P1: Name: bad | P1: Name: still bad")

	require.Equal(t, 1, c.Len())
	got, ok := c.Get(Identity{Page: 1, Field: "Name"})
	require.True(t, ok)
	assert.Equal(t, "still bad", got.Text)
	assert.Equal(t, "P1: Name", got.Identity().String())
}

func TestParse_Tolerant(t *testing.T) {
	cell := " | garbage | Q1: Name: x | P: Name: x | Px: Name: y | P2 | P3:  | P4: Total: sum: off by one | P5: Signature | P6: : orphan "
	c := Parse(cell)

	want := []Comment{
		{Page: 4, Field: "Total", Text: "sum: off by one"},
		{Page: 5, Field: "Signature", Text: ""},
	}
	if diff := cmp.Diff(want, c.Ordered()); diff != "" {
		t.Errorf("parsed comments mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 0, Parse("   ").Len())
}

func TestRoundTrip(t *testing.T) {
	c := New()
	c.Add(Comment{Page: 2, Field: "Total", Text: "The sum of the fields is 30.0, but the total is 31.0."})
	c.Add(Comment{Page: 1, Field: "b", Text: "At most 1 of these may be ticked; 2 are ticked."})
	c.Add(Comment{Page: 1, Field: "a", Text: "Invalid email address: x"})
	c.Add(Comment{Page: 3, Field: "Empty", Text: ""})

	cell := c.String()
	assert.Equal(t,
		"P1: a: Invalid email address: x | P1: b: At most 1 of these may be ticked; 2 are ticked. | P2: Total: The sum of the fields is 30.0, but the total is 31.0.",
		cell)

	back := Parse(cell)
	var nonEmpty []Comment
	for _, cm := range c.All() {
		if cm.Text != "" {
			nonEmpty = append(nonEmpty, cm)
		}
	}
	if diff := cmp.Diff(nonEmpty, back.All()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestAdd_Idempotent(t *testing.T) {
	c := New()
	c.Add(Comment{Page: 1, Field: "Name", Text: "missing"})
	c.Add(Comment{Page: 1, Field: "Name", Text: "missing"})
	assert.Equal(t, 1, c.Len())

	c.Add(Comment{Page: 2, Field: "Herd", Text: "x"})
	c.Add(Comment{Page: 1, Field: "Name", Text: "replaced"})
	ordered := c.Ordered()
	require.Len(t, ordered, 2)
	assert.Equal(t, "replaced", ordered[0].Text, "replacement keeps original position")
}

func TestRemove(t *testing.T) {
	c := Parse("P1: a: x | P1: b: y | P2: a: z")

	assert.True(t, c.Remove(Identity{Page: 1, Field: "b"}))
	assert.False(t, c.Remove(Identity{Page: 1, Field: "b"}))
	assert.Equal(t, "P1: a: x | P2: a: z", c.String())
}

func TestForPage(t *testing.T) {
	c := Parse("P1: a: x | P1: b | P2: a: z")
	assert.Equal(t, map[string]string{"a": "x"}, c.ForPage(1))
	assert.Equal(t, map[string]string{"a": "z"}, c.ForPage(2))
	assert.Empty(t, c.ForPage(9))
}

func TestString_EscapesSeparator(t *testing.T) {
	c := New()
	c.Add(Comment{Page: 1, Field: "Email", Text: "Invalid email address: a|b"})
	cell := c.String()
	assert.Equal(t, "P1: Email: Invalid email address: a/b", cell)
	assert.Equal(t, 1, Parse(cell).Len())
}

func TestParseIdentity(t *testing.T) {
	tests := []struct {
		in   string
		want Identity
		ok   bool
	}{
		{"P1: Name", Identity{Page: 1, Field: "Name"}, true},
		{" P12:Total ", Identity{Page: 12, Field: "Total"}, true},
		{"P1:", Identity{}, false},
		{"1: Name", Identity{}, false},
		{"Name", Identity{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseIdentity(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
