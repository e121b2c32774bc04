package export

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/labelprint/orderexport/internal/domain"
)

func TestNormalize(t *testing.T) {
	t.Run("Keys are lower-cased and trimmed", func(t *testing.T) {
		n := Normalize(domain.Properties{
			{Name: "  Background Color ", Value: "Red"},
			{Name: "TEXT LINE 1", Value: " John "},
		})

		assert.Equal(t, map[string]string{
			"background color": "Red",
			"text line 1":      " John ",
		}, n.Map())
	})

	t.Run("Last write wins on collision", func(t *testing.T) {
		n := Normalize(domain.Properties{
			{Name: "Text Color", Value: "Black"},
			{Name: "text color ", Value: "White"},
		})

		v, ok := n.Get("text color")
		assert.True(t, ok)
		assert.Equal(t, "White", v)
		assert.Equal(t, 1, n.Len())
	})

	t.Run("Empty names are skipped", func(t *testing.T) {
		n := Normalize(domain.Properties{{Name: "   ", Value: "x"}, {Name: "", Value: "y"}})

		assert.Equal(t, 0, n.Len())
	})

	t.Run("Keys keep first-seen order", func(t *testing.T) {
		n := Normalize(domain.Properties{
			{Name: "Motifs 2", Value: "B"},
			{Name: "Motifs 1", Value: "A"},
			{Name: "MOTIFS 2", Value: "C"},
		})

		assert.Equal(t, []string{"motifs 2", "motifs 1"}, n.Keys())
	})

	t.Run("Idempotent", func(t *testing.T) {
		first := Normalize(domain.Properties{
			{Name: "Font Style", Value: "Script"},
			{Name: " Motifs 1", Value: "ABC"},
			{Name: "font style", Value: "Block"},
		})
		second := Normalize(first.Properties())

		assert.Equal(t, first.Map(), second.Map())
		assert.Equal(t, first.Keys(), second.Keys())
	})

	t.Run("Nil bag", func(t *testing.T) {
		n := Normalize(nil)

		assert.Equal(t, 0, n.Len())
		assert.Equal(t, "", n.First([]string{"anything"}))
	})
}

func TestNormalizedProperties_First(t *testing.T) {
	n := Normalize(domain.Properties{
		{Name: "Text Style", Value: "  "},
		{Name: "Font Style", Value: "Script"},
		{Name: "Select a font for single line text", Value: "Block"},
	})

	assert.Equal(t, "Script", n.First([]string{"text style", "font style", "select a font for single line text"}))
	assert.Equal(t, "Block", n.First([]string{"select a font for single line text", "font style"}))
	assert.Equal(t, "", n.First([]string{"missing"}))
}

func TestNormalizedProperties_ValuesPassThrough(t *testing.T) {
	n := Normalize(domain.Properties{
		{Name: "Text line 1", Value: "  Smith  "},
		{Name: "Motifs 1", Value: " M1 "},
	})

	assert.Equal(t, "  Smith  ", n.First([]string{"text line 1"}))
	assert.Equal(t, []string{" M1 "}, n.WithPrefix([]string{"motifs"}))
}

func TestNormalizedProperties_WithPrefix(t *testing.T) {
	n := Normalize(domain.Properties{
		{Name: "Motifs 2", Value: "XYZ"},
		{Name: "Motifs 10", Value: "J"},
		{Name: "Motifs 3", Value: " "},
		{Name: "MOTIF CODE 4", Value: "Q1"},
		{Name: "Other", Value: "ignored"},
		{Name: "Motifs 1", Value: "ABC"},
	})

	assert.Equal(t, []string{"XYZ", "J", "Q1", "ABC"}, n.WithPrefix([]string{"motifs", "motif code"}))
}
