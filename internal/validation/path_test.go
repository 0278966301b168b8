package validation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "absolute", input: "/var/lib/headlines.db", want: "/var/lib/headlines.db"},
		{name: "tilde", input: "~/.headlines/headlines.db", want: filepath.Join(home, ".headlines", "headlines.db")},
		{name: "cleaned", input: "/var//lib/./x.db", want: "/var/lib/x.db"},
		{name: "empty", input: "", wantErr: true},
		{name: "null byte", input: "/tmp/a\x00b", wantErr: true},
		{name: "newline", input: "/tmp/a\nb", wantErr: true},
		{name: "traversal", input: "/tmp/../etc/passwd", wantErr: true},
		{name: "other user home", input: "~root/x.db", wantErr: true},
		{name: "too long", input: "/" + strings.Repeat("a", maxPathLength), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DataFile(tt.input, false)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsafePath)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDataFile_Relative(t *testing.T) {
	got, err := DataFile("headlines.db", false)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
}

func TestDataFile_CreatesParent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "headlines.db")

	got, err := DataFile(path, true)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestDataFile_RejectsDirectory(t *testing.T) {
	_, err := DataFile(t.TempDir(), false)
	assert.ErrorIs(t, err, ErrUnsafePath)
}
