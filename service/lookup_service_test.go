package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Aashish23092/lazy-search/config"
	"github.com/Aashish23092/lazy-search/dto"
	"github.com/Aashish23092/lazy-search/matcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type stubCorpus struct {
	docs     []matcher.Document
	failures []dto.DocumentFailure
	listErr  error
}

func (s *stubCorpus) ListDocuments(dir string) ([]string, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	paths := make([]string, len(s.docs))
	for i, d := range s.docs {
		paths[i] = d.ID
	}
	return paths, nil
}

func (s *stubCorpus) BuildCorpus(ctx context.Context, paths []string) (*matcher.Corpus, []dto.DocumentFailure, error) {
	return matcher.NewCorpus(s.docs), s.failures, nil
}

func testConfig() *config.Config {
	threshold := matcher.DefaultFuzzyThreshold
	return &config.Config{
		Match: config.MatchConfig{
			FuzzyThreshold:   &threshold,
			ExtractionWindow: matcher.DefaultWindow,
			NumberPolicy:     string(matcher.PolicyTrailing),
		},
		Workbook: config.WorkbookConfig{NameColumn: "Name", NumberColumn: "SQN"},
	}
}

func writeWorkbook(t *testing.T, rows [][]string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", cell, v))
		}
	}
	path := filepath.Join(t.TempDir(), "roster.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLookupRun(t *testing.T) {
	path := writeWorkbook(t, [][]string{
		{"Name", "SQN"},
		{"John Smith", ""},
		{"José Núñez", ""},
		{"Nobody Here", ""},
	})
	docs := &stubCorpus{
		docs: []matcher.Document{
			{ID: "a.pdf", Text: "roll call\njohn smith 43\n"},
			{ID: "b.pdf", Text: "JOSE NUNEZ 7\n"},
		},
		failures: []dto.DocumentFailure{{Path: "c.pdf", Error: "no text"}},
	}

	svc := NewLookupService(docs, testConfig(), nil)
	res, err := svc.Run(context.Background(), dto.LookupRequest{WorkbookPath: path, DocumentDir: "docs"})
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "roster_updated.xlsx"), res.OutputPath)
	assert.Equal(t, 2, res.DocumentCount)
	assert.Equal(t, 3, res.NameCount)
	assert.Equal(t, map[string]string{"John Smith": "42", "José Núñez": "6"}, res.Matched)
	assert.Equal(t, []string{"Nobody Here"}, res.Unmatched)
	assert.Len(t, res.FailedDocument, 1)

	f, err := excelize.OpenFile(res.OutputPath)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "SQN"}, rows[0])
	assert.Equal(t, []string{"John Smith", "42"}, rows[1])
	assert.Equal(t, []string{"José Núñez", "6"}, rows[2])
	assert.Equal(t, "Nobody Here", rows[3][0])
}

func TestLookupRunLeftmostPolicy(t *testing.T) {
	path := writeWorkbook(t, [][]string{{"Name", "SQN"}, {"John Smith", ""}})
	docs := &stubCorpus{docs: []matcher.Document{{ID: "a.pdf", Text: "7 john smith 43"}}}

	cfg := testConfig()
	cfg.Match.NumberPolicy = string(matcher.PolicyLeftmost)
	out := filepath.Join(t.TempDir(), "out.xlsx")

	res, err := NewLookupService(docs, cfg, nil).Run(context.Background(), dto.LookupRequest{
		WorkbookPath: path,
		DocumentDir:  "docs",
		OutputPath:   out,
	})
	require.NoError(t, err)
	assert.Equal(t, out, res.OutputPath)
	assert.Equal(t, map[string]string{"John Smith": "7"}, res.Matched)
}

func TestLookupRunInputErrors(t *testing.T) {
	svc := NewLookupService(&stubCorpus{}, testConfig(), nil)

	path := writeWorkbook(t, [][]string{{"Person", "SQN"}, {"John", ""}})
	_, err := svc.Run(context.Background(), dto.LookupRequest{WorkbookPath: path, DocumentDir: "docs"})
	assert.ErrorIs(t, err, dto.ErrMissingColumn)
	assert.True(t, dto.IsInputError(err))

	path = writeWorkbook(t, [][]string{{"Name", "SQN"}, {"John", ""}})
	svc = NewLookupService(&stubCorpus{listErr: dto.ErrNoDocuments}, testConfig(), nil)
	_, err = svc.Run(context.Background(), dto.LookupRequest{WorkbookPath: path, DocumentDir: "docs"})
	assert.ErrorIs(t, err, dto.ErrNoDocuments)

	_, err = svc.Run(context.Background(), dto.LookupRequest{DocumentDir: "docs"})
	assert.Error(t, err)
}

func TestLookupResolve(t *testing.T) {
	svc := NewLookupService(nil, testConfig(), nil)

	res, err := svc.Resolve(context.Background(), &dto.ResolveRequest{
		Names: []string{"John Smith", "Ana Lopez", "", "John Smith"},
		Documents: []dto.DocumentText{
			{Text: "JOHN SMITH 43"},
			{ID: "second", Text: "nothing here"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"John Smith": "42"}, res.Results)
	assert.Equal(t, []string{"Ana Lopez"}, res.Unmatched)
}

func TestLookupResolveNoDocuments(t *testing.T) {
	svc := NewLookupService(nil, testConfig(), nil)
	_, err := svc.Resolve(context.Background(), &dto.ResolveRequest{Names: []string{"x"}})
	assert.ErrorIs(t, err, dto.ErrNoDocuments)
}
