package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Aashish23092/lazy-search/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLIRequestDefaultsDocumentDir(t *testing.T) {
	req, err := cliRequest("roster.xlsx", "", "", ".")
	require.NoError(t, err)
	assert.Equal(t, dto.LookupRequest{WorkbookPath: "roster.xlsx", DocumentDir: "."}, req)
}

func TestCLIRequestFindsWorkbook(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"notes.txt", "b.xlsx", "a.xlsx"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	req, err := cliRequest("", "docs", "out.xlsx", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a.xlsx"), req.WorkbookPath)
	assert.Equal(t, "docs", req.DocumentDir)
	assert.Equal(t, "out.xlsx", req.OutputPath)
}

func TestCLIRequestNoWorkbook(t *testing.T) {
	_, err := cliRequest("", "docs", "", t.TempDir())
	assert.ErrorIs(t, err, dto.ErrUnsupportedWorkbook)
}
