package localfs

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_RegularFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.txt")
	require.NoError(t, os.WriteFile(path, []byte("quarterly totals"), 0600))

	doc, err := Open("  " + path + " ")
	require.NoError(t, err)
	defer doc.Close()

	file := doc.UploadFile()
	assert.Equal(t, "report.txt", file.Name)
	assert.Equal(t, int64(len("quarterly totals")), file.Size)

	data, err := io.ReadAll(file.Content)
	require.NoError(t, err)
	assert.Equal(t, "quarterly totals", string(data))
	assert.Equal(t, path, doc.Path())
}

func TestOpen_Missing(t *testing.T) {
	doc, err := Open(filepath.Join(t.TempDir(), "missing.pdf"))

	assert.Nil(t, doc)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpen_Directory(t *testing.T) {
	doc, err := Open(t.TempDir())

	assert.Nil(t, doc)
	assert.ErrorIs(t, err, ErrNotRegularFile)
}

func TestExpand(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := Expand("~/docs/report.pdf")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "docs", "report.pdf"), got)

	got, err = Expand("~")
	require.NoError(t, err)
	assert.Equal(t, home, got)

	got, err = Expand("./a/../report.pdf")
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", got)

	_, err = Expand("   ")
	assert.Error(t, err)
}
