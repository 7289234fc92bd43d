package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Aashish23092/lazy-search/config"
	"github.com/Aashish23092/lazy-search/dto"
	"github.com/Aashish23092/lazy-search/matcher"
	"github.com/Aashish23092/lazy-search/spreadsheet"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CorpusBuilder produces the searchable corpus for a run.
type CorpusBuilder interface {
	ListDocuments(dir string) ([]string, error)
	BuildCorpus(ctx context.Context, paths []string) (*matcher.Corpus, []dto.DocumentFailure, error)
}

// LookupService fills the number column of a roster workbook from a
// directory of PDFs.
type LookupService struct {
	docs         CorpusBuilder
	resolverOpts []matcher.Option
	sheet        string
	columns      spreadsheet.Columns
	logger       *zap.Logger
}

func NewLookupService(docs CorpusBuilder, cfg *config.Config, logger *zap.Logger) *LookupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LookupService{
		docs:         docs,
		resolverOpts: cfg.ResolverOptions(),
		sheet:        cfg.Workbook.Sheet,
		columns: spreadsheet.Columns{
			Name:   cfg.Workbook.NameColumn,
			Number: cfg.Workbook.NumberColumn,
		},
		logger: logger,
	}
}

// Run processes one workbook. Input errors (bad workbook, missing columns, no
// documents) are returned before anything is written.
func (s *LookupService) Run(ctx context.Context, req dto.LookupRequest) (*dto.LookupResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := s.logger.With(zap.String("run_id", runID))
	start := time.Now()

	wb, err := spreadsheet.Open(req.WorkbookPath, s.sheet, s.columns)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	paths, err := s.docs.ListDocuments(req.DocumentDir)
	if err != nil {
		return nil, err
	}

	corpus, failures, err := s.docs.BuildCorpus(ctx, paths)
	if err != nil {
		return nil, err
	}

	// row 0 is the header
	names := wb.Names()[1:]
	logger.Info("resolving names", zap.Int("names", len(names)), zap.Int("documents", corpus.Len()))

	result, err := s.resolver(logger).ResolveContext(ctx, names, corpus)
	if err != nil {
		return nil, err
	}

	written, err := wb.SetNumbers(result)
	if err != nil {
		return nil, err
	}

	out := req.OutputPath
	if out == "" {
		out = spreadsheet.OutputPath(req.WorkbookPath)
	}
	if err := wb.SaveAs(out); err != nil {
		return nil, err
	}

	logger.Info("updated workbook saved",
		zap.String("output", out),
		zap.Int("rows_written", written),
		zap.Int("failed_documents", len(failures)),
		zap.Duration("duration", time.Since(start)),
	)

	return &dto.LookupResult{
		RunID:          runID,
		OutputPath:     out,
		DocumentCount:  corpus.Len(),
		NameCount:      len(names),
		Matched:        result,
		Unmatched:      unmatched(names, result),
		FailedDocument: failures,
		ProcessedAt:    time.Now().Format(time.RFC3339),
	}, nil
}

// Resolve matches names against already extracted text.
func (s *LookupService) Resolve(ctx context.Context, req *dto.ResolveRequest) (*dto.ResolveResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	docs := make([]matcher.Document, len(req.Documents))
	for i, d := range req.Documents {
		id := d.ID
		if id == "" {
			id = fmt.Sprintf("document-%d", i+1)
		}
		docs[i] = matcher.Document{ID: id, Text: d.Text}
	}

	result, err := s.resolver(s.logger).ResolveContext(ctx, req.Names, matcher.NewCorpus(docs))
	if err != nil {
		return nil, err
	}
	return &dto.ResolveResponse{Results: result, Unmatched: unmatched(req.Names, result)}, nil
}

func (s *LookupService) resolver(logger *zap.Logger) *matcher.Resolver {
	lastDecile := -1
	progress := func(done, total int) {
		if total == 0 {
			return
		}
		if decile := done * 10 / total; decile != lastDecile {
			lastDecile = decile
			logger.Info("progress", zap.Int("percent", decile*10))
		}
	}
	opts := append([]matcher.Option{}, s.resolverOpts...)
	opts = append(opts, matcher.WithLogger(logger), matcher.WithProgress(progress))
	return matcher.NewResolver(opts...)
}

// unmatched lists the distinct non-blank names absent from result, in input
// order.
func unmatched(names []string, result matcher.Result) []string {
	out := []string{}
	seen := make(map[string]bool)
	for _, n := range names {
		if strings.TrimSpace(n) == "" || seen[n] {
			continue
		}
		seen[n] = true
		if _, ok := result[n]; !ok {
			out = append(out, n)
		}
	}
	return out
}
