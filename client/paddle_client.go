package client

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

// PaddleClient sends page images to a PaddleOCR serving endpoint
// (predict/ocr_system).
type PaddleClient struct {
	apiURL string
	http   *http.Client
	logger *zap.Logger
}

// NewPaddleClient returns nil when apiURL is empty so callers can skip the
// remote engine entirely.
func NewPaddleClient(apiURL string, logger *zap.Logger) *PaddleClient {
	if apiURL == "" {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("PaddleOCR endpoint configured", zap.String("url", apiURL))
	return &PaddleClient{
		apiURL: apiURL,
		http:   &http.Client{Timeout: 60 * time.Second},
		logger: logger,
	}
}

func (p *PaddleClient) Name() string { return "paddleocr" }

type paddleResponse struct {
	Results [][]struct {
		Text       string  `json:"text"`
		Confidence float64 `json:"confidence"`
	} `json:"results"`
}

// ExtractTextAndQuality OCRs an image file remotely. Quality is the mean line
// confidence scaled to 0-100.
func (p *PaddleClient) ExtractTextAndQuality(filePath string) (string, float64, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", 0, fmt.Errorf("failed to read image: %w", err)
	}

	payload, err := json.Marshal(map[string]any{
		"images": []string{base64.StdEncoding.EncodeToString(data)},
	})
	if err != nil {
		return "", 0, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	resp, err := p.http.Post(p.apiURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", 0, fmt.Errorf("failed to call PaddleOCR API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return "", 0, fmt.Errorf("PaddleOCR API returned status %d: %s", resp.StatusCode, string(body))
	}

	var result paddleResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", 0, fmt.Errorf("failed to decode PaddleOCR response: %w", err)
	}
	if len(result.Results) == 0 || len(result.Results[0]) == 0 {
		return "", 0, errors.New("PaddleOCR extracted no text")
	}

	var b strings.Builder
	var confSum float64
	for _, line := range result.Results[0] {
		b.WriteString(line.Text)
		b.WriteString("\n")
		confSum += line.Confidence
	}
	quality := confSum / float64(len(result.Results[0])) * 100

	p.logger.Debug("PaddleOCR page done", zap.String("file", filePath), zap.Int("chars", b.Len()))
	return b.String(), quality, nil
}
