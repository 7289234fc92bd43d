package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/Aashish23092/lazy-search/client"
	"github.com/Aashish23092/lazy-search/config"
	"github.com/Aashish23092/lazy-search/dto"
	"github.com/Aashish23092/lazy-search/handler"
	"github.com/Aashish23092/lazy-search/service"
	"github.com/Aashish23092/lazy-search/spreadsheet"
	"github.com/Aashish23092/lazy-search/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

func run() int {
	excelPath := flag.String("excel", "", "roster workbook with Name and SQN columns")
	pdfDir := flag.String("pdf-dir", "", "directory of PDF documents to search")
	outPath := flag.String("out", "", "output workbook (default <workbook>_updated.<ext>)")
	configPath := flag.String("config", "", "YAML configuration file")
	flag.Parse()

	// Initialize configuration
	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		return 2
	}

	logger, err := newLogger(cfg.Log.Level)
	if err != nil {
		log.Printf("Failed to create logger: %v", err)
		return 2
	}
	defer logger.Sync()

	// Initialize OCR engines, remote Paddle first when configured
	var recognizers []service.TextRecognizer
	if paddle := client.NewPaddleClient(cfg.OCR.PaddleURL, logger); paddle != nil {
		recognizers = append(recognizers, paddle)
	}
	tesseractClient := client.NewTesseractClient(cfg.OCR.TessdataPrefix, cfg.OCR.Language, logger)
	defer tesseractClient.Close()
	recognizers = append(recognizers, tesseractClient)

	var qr service.QRReader
	if cfg.OCR.DecodeQR {
		qr = client.NewQRDecoder()
	}

	var cache service.TextCache
	if cfg.Cache.Path != "" {
		textCache, err := store.Open(cfg.Cache.Path)
		if err != nil {
			logger.Error("failed to open text cache", zap.String("path", cfg.Cache.Path), zap.Error(err))
			return 1
		}
		defer textCache.Close()
		cache = textCache
	}

	// Initialize service layer
	documentService := service.NewDocumentService(
		service.NewPDFProcessor(),
		recognizers,
		qr,
		cache,
		service.DocumentOptions{Workers: cfg.OCR.Workers, Strict: cfg.Match.StrictExtraction},
		logger,
	)
	lookupService := service.NewLookupService(documentService, cfg, logger)

	if *excelPath != "" || *pdfDir != "" {
		req, err := cliRequest(*excelPath, *pdfDir, *outPath, ".")
		if err != nil {
			logger.Error("no workbook given", zap.Error(err))
			return 1
		}
		return runOnce(lookupService, logger, req)
	}

	if err := serve(cfg, lookupService, logger); err != nil {
		logger.Error("failed to start server", zap.Error(err))
		return 1
	}
	return 0
}

// cliRequest fills in the flags left empty: the first workbook in cwd when
// only a document directory is given, and cwd as the document directory when
// only a workbook is given.
func cliRequest(excelPath, pdfDir, outPath, cwd string) (dto.LookupRequest, error) {
	if excelPath == "" {
		found, err := firstWorkbook(cwd)
		if err != nil {
			return dto.LookupRequest{}, err
		}
		excelPath = found
	}
	if pdfDir == "" {
		pdfDir = cwd
	}
	return dto.LookupRequest{WorkbookPath: excelPath, DocumentDir: pdfDir, OutputPath: outPath}, nil
}

func loadConfig(path string) (*config.Config, error) {
	cfg := config.LoadConfig()
	if path != "" {
		var err error
		if cfg, err = config.LoadFile(path); err != nil {
			return nil, err
		}
	}
	return cfg, cfg.Validate()
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = lvl
	return zcfg.Build()
}

func runOnce(lookup *service.LookupService, logger *zap.Logger, req dto.LookupRequest) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := lookup.Run(ctx, req)
	if err != nil {
		logger.Error("lookup failed", zap.Error(err), zap.Bool("input_error", dto.IsInputError(err)))
		return 1
	}
	for _, f := range result.FailedDocument {
		logger.Warn("document skipped", zap.String("document", f.Path), zap.String("error", f.Error))
	}
	fmt.Println(result.OutputPath)
	return 0
}

func serve(cfg *config.Config, lookup *service.LookupService, logger *zap.Logger) error {
	lookupHandler := handler.NewLookupHandler(lookup, logger)

	// Setup Gin router
	router := gin.Default()
	router.MaxMultipartMemory = cfg.Server.MaxUploadMB << 20
	lookupHandler.Register(router)

	// Start server
	logger.Info("starting lazy-search service", zap.String("port", cfg.Server.Port))
	return router.Run(":" + cfg.Server.Port)
}

// firstWorkbook returns the alphabetically first supported workbook in dir.
// os.ReadDir sorts by name.
func firstWorkbook(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if !e.IsDir() && spreadsheet.Supported(e.Name()) {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", fmt.Errorf("%w in %s", dto.ErrUnsupportedWorkbook, dir)
}
