package operation

import (
	"path/filepath"
	"testing"

	"filephile/internal/fsys"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpand(t *testing.T) {
	t.Setenv("FP_PAGER", "less -R")
	paths := []string{"/d/a b.txt", "/d/c"}

	tests := []struct {
		name     string
		template string
		want     []string
	}{
		{"appends paths", "stat", []string{"stat", "/d/a b.txt", "/d/c"}},
		{"word placeholder", "cp {} /tmp", []string{"cp", "/d/a b.txt", "/d/c", "/tmp"}},
		{"embedded placeholder", "echo 'files: {}'", []string{"echo", "files: /d/a b.txt /d/c"}},
		{"cwd", "tar czf {cwd}/out.tgz {}", []string{"tar", "czf", "/work/out.tgz", "/d/a b.txt", "/d/c"}},
		{"env is not re-split", "$FP_PAGER {}", []string{"less -R", "/d/a b.txt", "/d/c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Expand(tt.template, paths, "/work")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Expand("   ", paths, "/work")
	assert.Error(t, err)
	_, err = Expand(`echo "unterminated`, paths, "/work")
	assert.Error(t, err)
}

func TestUniqueName(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "report.pdf"), "")
	writeFile(t, filepath.Join(dir, "report_(1).pdf"), "")
	writeFile(t, filepath.Join(dir, ".env"), "")

	assert.Equal(t, filepath.Join(dir, "report_(2).pdf"), uniqueName(fsys.NewOS(), filepath.Join(dir, "report.pdf")))
	assert.Equal(t, filepath.Join(dir, ".env_(1)"), uniqueName(fsys.NewOS(), filepath.Join(dir, ".env")))
	assert.Equal(t, filepath.Join(dir, "Makefile_(1)"), uniqueName(fsys.NewOS(), filepath.Join(dir, "Makefile")))
}
