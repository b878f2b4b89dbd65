package manifest

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReader_Next(t *testing.T) {
	r := NewReader(strings.NewReader("kind: A\n---\nkind: B\n"))

	d, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, 0, d.Index)

	d, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, 1, d.Index)

	_, err = r.Next()
	require.ErrorIs(t, err, io.EOF)

	_, err = r.Next()
	require.ErrorIs(t, err, io.EOF, "EOF is sticky")
}

func TestReader_SkipsEmptyDocuments(t *testing.T) {
	input := "---\nkind: A\n---\n\n---\n# Source: chart/templates/empty.yaml\n---\n~\n---\nkind: B\n---\n"

	docs, err := ReadAll(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, 0, docs[0].Index)
	assert.Greater(t, docs[1].Index, docs[0].Index)
}

func TestReader_EmptyStream(t *testing.T) {
	docs, err := ReadAll(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestReader_ParseError(t *testing.T) {
	r := NewReader(strings.NewReader("kind: A\n---\nkind: [oops\n"))

	_, err := r.Next()
	require.NoError(t, err)

	_, err = r.Next()

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, 1, parseErr.Index)
	assert.Contains(t, err.Error(), "parsing document 1")

	_, again := r.Next()
	assert.True(t, errors.Is(again, err), "errors are sticky")
}

func TestReader_DuplicateMappingKey(t *testing.T) {
	tests := []struct {
		name  string
		input string
		index int
		key   string
	}{
		{"top level", "kind: A\nkind: B\nmetadata:\n  name: x\n", 0, "kind"},
		{"nested", "kind: A\nmetadata:\n  name: x\n  name: y\n", 0, "name"},
		{"later document", "kind: A\n---\nkind: B\nmetadata: {}\nmetadata: {}\n", 1, "metadata"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadAll(strings.NewReader(tt.input))

			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, tt.index, parseErr.Index)
			assert.Contains(t, err.Error(), `mapping key "`+tt.key+`" already defined`)
		})
	}
}

func TestReader_MergeKeysAreNotDuplicates(t *testing.T) {
	input := "base: &b\n  name: x\nmetadata:\n  <<: *b\n  name: y\n"

	docs, err := ReadAll(strings.NewReader(input))
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestReadAll_ParseError(t *testing.T) {
	_, err := ReadAll(strings.NewReader("a: b: c\n"))

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}
