package services

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoredName(t *testing.T) {
	now := time.UnixMilli(1700000000000)

	assert.Equal(t, "1700000000000-report.pdf", storedName(now, "report.pdf"))
	// Any directory part of the client-supplied name is stripped.
	assert.Equal(t, "1700000000000-evil.txt", storedName(now, "../../evil.txt"))
}

func uploadHeaders(t *testing.T, files map[string]string) []*multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for name, content := range files {
		part, err := writer.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	reader := multipart.NewReader(&body, writer.Boundary())
	form, err := reader.ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })

	return form.File["files"]
}

func TestFileServiceSaveAndResolve(t *testing.T) {
	dir := t.TempDir()
	svc, err := NewFileService(dir)
	require.NoError(t, err)

	headers := uploadHeaders(t, map[string]string{"notes.txt": "hello"})
	stored, err := svc.SaveUploads(headers)
	require.NoError(t, err)
	require.Len(t, stored, 1)

	assert.Regexp(t, regexp.MustCompile(`^\d+-notes\.txt$`), stored[0])

	path, err := svc.Resolve(stored[0])
	require.NoError(t, err)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))
}

func TestFileServiceSaveNoFiles(t *testing.T) {
	svc, err := NewFileService(t.TempDir())
	require.NoError(t, err)

	stored, err := svc.SaveUploads(nil)
	require.NoError(t, err)
	assert.Empty(t, stored)
	assert.NotNil(t, stored)
}

func TestFileServiceResolveRejectsMissingAndTraversal(t *testing.T) {
	dir := t.TempDir()
	svc, err := NewFileService(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0600))

	_, err = svc.Resolve("missing.txt")
	assert.ErrorIs(t, err, ErrFileNotFound)

	_, err = svc.Resolve("../a.txt")
	assert.ErrorIs(t, err, ErrFileNotFound)

	_, err = svc.Resolve("")
	assert.ErrorIs(t, err, ErrFileNotFound)
}
