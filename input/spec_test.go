package input

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/fibers/mr"
)

const sampleSpec = `
name: wordfreq
inputs:
  - url: data/a.txt
  - url: data/b.txt
    strval: en
  - url: https://example.com/c.txt
    i64val: 3
`

func TestParseSpec(t *testing.T) {
	s, err := ParseSpec([]byte(sampleSpec))
	require.NoError(t, err)
	require.Equal(t, "wordfreq", s.Name)
	require.Equal(t, []mr.FileSpec{
		{URL: "data/a.txt"},
		mr.StrFileSpec("data/b.txt", "en"),
		mr.I64FileSpec("https://example.com/c.txt", 3),
	}, s.Inputs)
}

func TestParseSpec_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "not yaml", doc: "inputs: [unclosed"},
		{name: "no inputs", doc: "name: x"},
		{name: "missing url", doc: "inputs:\n  - strval: en"},
		{name: "two values", doc: "inputs:\n  - url: a\n    strval: en\n    i64val: 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSpec([]byte(tt.doc))
			require.ErrorIs(t, err, ErrInvalidSpec)
		})
	}
}

func TestLoadSpec(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spec.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleSpec), 0o600))

	s, err := LoadSpec(path)
	require.NoError(t, err)
	require.Len(t, s.Inputs, 3)

	_, err = LoadSpec(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, ErrInvalidSpec)
}
