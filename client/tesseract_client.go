package client

import (
	"fmt"

	"github.com/otiai10/gosseract/v2"
	"go.uber.org/zap"
)

type TesseractClient struct {
	dataPath string
	language string
	logger   *zap.Logger
}

func NewTesseractClient(dataPath, language string, logger *zap.Logger) *TesseractClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	if language == "" {
		language = "eng"
	}
	return &TesseractClient{
		dataPath: dataPath,
		language: language,
		logger:   logger,
	}
}

func (tc *TesseractClient) Name() string { return "tesseract" }

// ExtractTextAndQuality runs Tesseract on an image file and returns the text
// together with the mean word confidence (0-100).
func (tc *TesseractClient) ExtractTextAndQuality(filePath string) (string, float64, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if tc.dataPath != "" {
		client.SetTessdataPrefix(tc.dataPath)
	}
	if err := client.SetLanguage(tc.language); err != nil {
		return "", 0, fmt.Errorf("failed to set language: %w", err)
	}

	if err := client.SetImage(filePath); err != nil {
		return "", 0, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", 0, fmt.Errorf("failed to extract text: %w", err)
	}

	// Get bounding boxes to calculate confidence
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		tc.logger.Debug("tesseract bounding boxes unavailable", zap.String("file", filePath), zap.Error(err))
		return text, 0, nil
	}

	var totalConf float64
	for _, box := range boxes {
		totalConf += box.Confidence
	}

	avgConf := 0.0
	if len(boxes) > 0 {
		avgConf = totalConf / float64(len(boxes))
	}

	return text, avgConf, nil
}

// Close performs cleanup
func (tc *TesseractClient) Close() {
	tc.logger.Debug("tesseract client closed")
}
