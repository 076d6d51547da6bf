package pdfextract

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTextMissingFile(t *testing.T) {
	e := NewExtractor()

	_, err := e.ExtractText("/nonexistent/file.pdf")
	require.Error(t, err)

	var extractErr *ExtractionError
	require.True(t, errors.As(err, &extractErr))
	assert.Equal(t, "/nonexistent/file.pdf", extractErr.Path)
	assert.NotNil(t, extractErr.Unwrap())
}

func TestExtractTextCorruptFile(t *testing.T) {
	e := NewExtractor()

	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("this is not a pdf"), 0o644))

	_, err := e.ExtractText(path)
	var extractErr *ExtractionError
	require.True(t, errors.As(err, &extractErr))
}

func TestPageCountMissingFile(t *testing.T) {
	e := NewExtractor()

	_, err := e.PageCount("/nonexistent/file.pdf")
	var extractErr *ExtractionError
	require.True(t, errors.As(err, &extractErr))
}
