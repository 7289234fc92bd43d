package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Aashish23092/lazy-search/dto"
	"github.com/Aashish23092/lazy-search/matcher"
	"github.com/Aashish23092/lazy-search/store"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// minOCRChars is how much text a recognizer must return before later
// recognizers are skipped.
const minOCRChars = 5

// TextRecognizer OCRs an image file. Implemented by the Paddle and
// Tesseract clients.
type TextRecognizer interface {
	Name() string
	ExtractTextAndQuality(filePath string) (string, float64, error)
}

// QRReader returns the payload of a QR code in a page image.
type QRReader interface {
	Decode(img image.Image) (string, bool)
}

// TextCache stores extracted text by content hash.
type TextCache interface {
	Get(ctx context.Context, hash string) (store.Entry, bool, error)
	Put(ctx context.Context, e store.Entry) error
}

type DocumentOptions struct {
	Workers int
	// Strict aborts the whole corpus build on the first failed document.
	Strict bool
}

// DocumentService turns a directory of PDFs into a matcher corpus.
type DocumentService struct {
	pdf         PDFProcessor
	recognizers []TextRecognizer
	qr          QRReader
	cache       TextCache
	opts        DocumentOptions
	logger      *zap.Logger
}

// NewDocumentService wires the extraction chain. Recognizers are tried in
// order for every scanned page; qr and cache may be nil.
func NewDocumentService(
	pdf PDFProcessor,
	recognizers []TextRecognizer,
	qr QRReader,
	cache TextCache,
	opts DocumentOptions,
	logger *zap.Logger,
) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &DocumentService{
		pdf:         pdf,
		recognizers: recognizers,
		qr:          qr,
		cache:       cache,
		opts:        opts,
		logger:      logger,
	}
}

// ListDocuments returns the PDF files directly inside dir, sorted by name.
func (s *DocumentService) ListDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dto.ErrNoDocuments, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w in %s", dto.ErrNoDocuments, dir)
	}
	return paths, nil
}

// BuildCorpus extracts every document in parallel. The corpus keeps the order
// of paths. Failed documents are excluded and reported, unless the service is
// strict, in which case the first failure is returned.
func (s *DocumentService) BuildCorpus(ctx context.Context, paths []string) (*matcher.Corpus, []dto.DocumentFailure, error) {
	s.logger.Info("searching through PDF files", zap.Int("count", len(paths)))

	docs := make([]*dto.ExtractedDocument, len(paths))
	errs := make([]error, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for i, path := range paths {
		g.Go(func() error {
			doc, err := s.ExtractDocument(gctx, path)
			if err != nil {
				s.logger.Warn("error extracting text", zap.String("document", path), zap.Error(err))
				err = fmt.Errorf("%w: %s: %w", dto.ErrExtractionFailed, filepath.Base(path), err)
				if s.opts.Strict {
					return err
				}
				errs[i] = err
				return nil
			}
			s.logger.Info("extracted text",
				zap.String("document", path),
				zap.String("method", string(doc.Method)),
				zap.Int("pages", doc.Pages),
				zap.Float64("quality", doc.Quality),
			)
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	var failures []dto.DocumentFailure
	texts := make([]matcher.Document, 0, len(paths))
	for i, path := range paths {
		if errs[i] != nil {
			failures = append(failures, dto.DocumentFailure{Path: path, Error: errs[i].Error()})
			continue
		}
		texts = append(texts, matcher.Document{ID: path, Text: docs[i].Text})
	}
	return matcher.NewCorpus(texts), failures, nil
}

// ExtractDocument returns the text of one PDF: cached text first, then the
// embedded text layer, then OCR of the page images.
func (s *DocumentService) ExtractDocument(ctx context.Context, path string) (*dto.ExtractedDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	hash := store.Hash(data)
	if s.cache != nil {
		entry, ok, err := s.cache.Get(ctx, hash)
		if err != nil {
			s.logger.Warn("text cache lookup failed", zap.String("document", path), zap.Error(err))
		} else if ok {
			return &dto.ExtractedDocument{Path: path, Text: entry.Text, Method: dto.MethodCache}, nil
		}
	}

	doc := &dto.ExtractedDocument{Path: path, Method: dto.MethodPDFText}
	text, pages, textErr := s.pdf.ExtractText(data)
	if textErr != nil {
		s.logger.Warn("PDF text extraction failed", zap.String("document", path), zap.Error(textErr))
	}
	doc.Text, doc.Pages, doc.Quality = text, pages, 100

	if strings.TrimSpace(doc.Text) == "" {
		s.logger.Info("no text extracted, attempting OCR", zap.String("document", path))
		ocrText, quality, ocrErr := s.ocrDocument(ctx, data)
		if strings.TrimSpace(ocrText) == "" {
			return nil, fmt.Errorf("%w from %s: %w", dto.ErrNoText, filepath.Base(path), errors.Join(textErr, ocrErr))
		}
		doc.Text, doc.Quality, doc.Method = ocrText, quality, dto.MethodOCR
	}

	if s.cache != nil {
		err := s.cache.Put(ctx, store.Entry{Hash: hash, Path: path, Text: doc.Text, Method: string(doc.Method)})
		if err != nil {
			s.logger.Warn("text cache store failed", zap.String("document", path), zap.Error(err))
		}
	}

	s.logger.Debug("document extracted",
		zap.String("document", path),
		zap.Int("chars", len(doc.Text)),
		zap.Duration("duration", time.Since(start)),
	)
	return doc, nil
}

// ocrDocument recognizes every page image and joins the page texts. The
// returned quality is the mean recognizer confidence.
func (s *DocumentService) ocrDocument(ctx context.Context, data []byte) (string, float64, error) {
	images, err := s.pdf.ExtractImages(data)
	if err != nil {
		return "", 0, err
	}
	if len(images) == 0 {
		return "", 0, errors.New("no page images found")
	}

	var combined strings.Builder
	var totalConfidence float64
	var pageCount int
	var lastErr error

	for _, img := range images {
		if err := ctx.Err(); err != nil {
			return "", 0, err
		}

		pageText, conf, err := s.recognizeImage(img)
		if err != nil {
			lastErr = err
		}
		if s.qr != nil {
			if payload, ok := s.qr.Decode(img); ok {
				pageText += "\n" + payload
			}
		}
		if strings.TrimSpace(pageText) == "" {
			continue
		}

		combined.WriteString(pageText)
		combined.WriteString("\n")
		totalConfidence += conf
		pageCount++
	}

	if pageCount == 0 {
		if lastErr == nil {
			lastErr = errors.New("OCR produced no text")
		}
		return "", 0, lastErr
	}
	return combined.String(), totalConfidence / float64(pageCount), nil
}

func (s *DocumentService) recognizeImage(img image.Image) (string, float64, error) {
	if len(s.recognizers) == 0 {
		return "", 0, errors.New("no OCR engine configured")
	}

	tempImgFile, err := saveImageToTempFile(img)
	if err != nil {
		return "", 0, err
	}
	defer os.Remove(tempImgFile)

	var lastErr error
	for _, r := range s.recognizers {
		text, conf, err := r.ExtractTextAndQuality(tempImgFile)
		if err != nil {
			s.logger.Debug("OCR engine failed", zap.String("engine", r.Name()), zap.Error(err))
			lastErr = err
			continue
		}
		if len(strings.TrimSpace(text)) > minOCRChars {
			return text, conf, nil
		}
	}
	return "", 0, lastErr
}

// saveImageToTempFile saves an image.Image to a temporary PNG file.
func saveImageToTempFile(img image.Image) (string, error) {
	tempFile, err := os.CreateTemp("", "ocr-img-*.png")
	if err != nil {
		return "", fmt.Errorf("failed to create temp image file: %w", err)
	}
	defer tempFile.Close()

	if err := png.Encode(tempFile, img); err != nil {
		os.Remove(tempFile.Name())
		return "", fmt.Errorf("failed to encode image to PNG: %w", err)
	}

	return tempFile.Name(), nil
}
