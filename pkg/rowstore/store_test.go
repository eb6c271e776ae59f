package rowstore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

// TestLoad_HeaderDetection tests that a recognisable header row is replaced
// and a missing one is inserted.
func TestLoad_HeaderDetection(t *testing.T) {
	fields := []string{"Herd", "Name"}

	tests := []struct {
		name     string
		content  string
		wantRows int
		wantHerd string
	}{
		{
			name:     "matching header",
			content:  "tiff_path,Herd,Name,Comments\nscans/a.tif,H1,Ann,\n",
			wantRows: 1,
			wantHerd: "H1",
		},
		{
			name:     "header differs in case",
			content:  "TIFF_PATH,herd,NAME\nscans/a.tif,H1,Ann\n",
			wantRows: 1,
			wantHerd: "H1",
		},
		{
			name:     "legacy path header",
			content:  "file,Something,Else\nscans/a.tif,H1,Ann\n",
			wantRows: 1,
			wantHerd: "H1",
		},
		{
			name:     "no header",
			content:  "scans/a.tif,H1,Ann\nscans/b.tif,H2,Bob\n",
			wantRows: 2,
			wantHerd: "H1",
		},
		{
			name:     "byte order mark",
			content:  "\uFEFFtiff_path,Herd,Name,Comments\nscans/a.tif,H1,Ann,\n",
			wantRows: 1,
			wantHerd: "H1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := writeFile(t, t.TempDir(), "out.csv", tt.content)

			s, err := Load(p, fields)
			require.NoError(t, err)

			assert.Equal(t, []string{"tiff_path", "Herd", "Name", "Comments"}, s.Header())
			assert.Equal(t, tt.wantRows, s.RowCount())

			got, ok := s.Value(0, "Herd")
			assert.True(t, ok)
			assert.Equal(t, tt.wantHerd, got)
		})
	}
}

// TestLoad_PadsAndTruncates tests that rows are fitted to the header width.
func TestLoad_PadsAndTruncates(t *testing.T) {
	p := writeFile(t, t.TempDir(), "out.csv",
		"tiff_path,Herd,Comments\na.tif\nb.tif,H2,note,extra,more\n")

	s, err := Load(p, []string{"Herd"})
	require.NoError(t, err)

	snap := s.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, []string{"a.tif", "", ""}, snap[1])
	assert.Equal(t, []string{"b.tif", "H2", "note"}, snap[2])
}

// TestLoad_Missing tests loading a file that does not exist.
func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

// TestSetValue tests editing cells and the error cases.
func TestSetValue(t *testing.T) {
	p := writeFile(t, t.TempDir(), "out.csv", "tiff_path,Herd,Comments\na.tif,H1,\n")
	s, err := Load(p, []string{"Herd"})
	require.NoError(t, err)

	require.NoError(t, s.SetValue(0, "Herd", "H9"))
	got, _ := s.Value(0, "Herd")
	assert.Equal(t, "H9", got)

	var ufe *UnknownFieldError
	assert.ErrorAs(t, s.SetValue(0, "Colour", "x"), &ufe)

	var rre *RowRangeError
	assert.ErrorAs(t, s.SetValue(5, "Herd", "x"), &rre)
	assert.Equal(t, 1, rre.Rows)

	_, ok := s.Value(-1, "Herd")
	assert.False(t, ok)
}

// TestRowValues tests reading a row's layout fields.
func TestRowValues(t *testing.T) {
	p := writeFile(t, t.TempDir(), "out.csv", "tiff_path,Herd,Name,Comments\na.tif,H1,Ann,P1: Herd: x\n")
	s, err := Load(p, []string{"Herd", "Name"})
	require.NoError(t, err)

	values, err := s.RowValues(0)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Herd": "H1", "Name": "Ann"}, values)

	cell, ok := s.Comments(0)
	assert.True(t, ok)
	assert.Equal(t, "P1: Herd: x", cell)

	_, err = s.RowValues(3)
	assert.Error(t, err)
}

// TestRowIndexForPath tests case-insensitive tiff path matching.
func TestRowIndexForPath(t *testing.T) {
	p := writeFile(t, t.TempDir(), "out.csv",
		"tiff_path,Herd,Comments\nscans/A.tif,H1,\nscans/b.TIF,H2,\n")
	s, err := Load(p, []string{"Herd"})
	require.NoError(t, err)

	assert.Equal(t, 0, s.RowIndexForPath("scans/a.tif"))
	assert.Equal(t, 1, s.RowIndexForPath("SCANS/B.tif"))
	assert.Equal(t, -1, s.RowIndexForPath("scans/c.tif"))
}

// TestAbsoluteTiffPath tests resolving relative paths against the csv folder.
func TestAbsoluteTiffPath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "scans"), 0o755))
	writeFile(t, filepath.Join(dir, "scans"), "a.tif", "")

	p := writeFile(t, dir, "out.csv", "tiff_path,Herd,Comments\nscans\\a.tif,H1,\n,H2,\n")
	s, err := Load(p, []string{"Herd"})
	require.NoError(t, err)

	got, ok := s.AbsoluteTiffPath(0)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "scans", "a.tif"), got)

	_, ok = s.AbsoluteTiffPath(1)
	assert.False(t, ok)
}

// TestSave tests that a saved store reloads with the same content.
func TestSave(t *testing.T) {
	p := writeFile(t, t.TempDir(), "out.csv", "a.tif,H1\n")
	s, err := Load(p, []string{"Herd"})
	require.NoError(t, err)

	require.NoError(t, s.SetComments(0, "P1: Herd: check"))
	require.NoError(t, s.Save())

	reloaded, err := Load(p, []string{"Herd"})
	require.NoError(t, err)
	assert.Equal(t, s.Snapshot(), reloaded.Snapshot())
	assert.True(t, Exists(p))
}

// TestWriteCSV_NoPath tests the empty path error.
func TestWriteCSV_NoPath(t *testing.T) {
	assert.ErrorIs(t, writeCSV("", nil), ErrNoPath)
}
