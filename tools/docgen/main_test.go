package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The command tree is a package-level value, so these cases run serially.
func TestRun(t *testing.T) {
	tests := []struct {
		name     string
		format   string
		wantFile string
		wantText string
		wantErr  bool
	}{
		{name: "markdown", format: formatMarkdown, wantFile: "labcat_search.md", wantText: `title: "labcat search"`},
		{name: "man", format: formatMan, wantFile: "labcat-search.1", wantText: ".TH"},
		{name: "unknown format", format: "html", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			var out bytes.Buffer
			err := run([]string{"-output", dir, "-format", tt.format}, &out)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, out.String(), dir)

			data, err := os.ReadFile(filepath.Join(dir, tt.wantFile))
			require.NoError(t, err)
			assert.Contains(t, string(data), tt.wantText)
		})
	}
}

func TestFrontMatter(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "---\ntitle: \"labcat studies list\"\n---\n\n", frontMatter("/tmp/docs/labcat_studies_list.md"))
}
