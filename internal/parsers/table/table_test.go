package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	got := Render(
		[]string{"name", "age"},
		[][]string{{"alice", "30"}, {"bob", "4"}},
	)
	want := " name  age\n" +
		"alice   30\n" +
		"  bob    4"
	assert.Equal(t, want, got)
}

func TestRender_RaggedRows(t *testing.T) {
	got := Render([]string{"a", "b"}, [][]string{{"1"}, {"1", "2", "3"}})
	want := "a  b\n" +
		"1\n" +
		"1  2  3"
	assert.Equal(t, want, got)
}

func TestRender_CellsWithSeparators(t *testing.T) {
	got := Render([]string{"note"}, [][]string{{"line\none\tcol"}})
	assert.Equal(t, "        note\nline one col", got)
}

func TestRender_Unicode(t *testing.T) {
	got := Render([]string{"città"}, [][]string{{"ab"}})
	assert.Equal(t, "città\n   ab", got)
}

func TestRender_Empty(t *testing.T) {
	assert.Equal(t, "", Render(nil, nil))
	assert.Equal(t, "x", Render([]string{"x"}, nil))
}
