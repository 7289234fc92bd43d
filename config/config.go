package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/Aashish23092/lazy-search/dto"
	"github.com/Aashish23092/lazy-search/matcher"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Match    MatchConfig    `yaml:"match"`
	Workbook WorkbookConfig `yaml:"workbook"`
	OCR      OCRConfig      `yaml:"ocr"`
	Cache    CacheConfig    `yaml:"cache"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Port        string `yaml:"port"`
	MaxUploadMB int64  `yaml:"max_upload_mb"`
}

// MatchConfig drives the name resolver.
type MatchConfig struct {
	FuzzyThreshold   *int   `yaml:"fuzzy_threshold"`
	ExtractionWindow int    `yaml:"extraction_window"`
	NumberPolicy     string `yaml:"number_policy"`
	TrailingOffByOne *bool  `yaml:"trailing_off_by_one"`
	StrictExtraction bool   `yaml:"strict_on_extraction_failure"`
}

type WorkbookConfig struct {
	Sheet        string `yaml:"sheet"`
	NameColumn   string `yaml:"name_column"`
	NumberColumn string `yaml:"number_column"`
}

type OCRConfig struct {
	TessdataPrefix string `yaml:"tessdata_prefix"`
	Language       string `yaml:"language"`
	PaddleURL      string `yaml:"paddle_url"`
	DecodeQR       bool   `yaml:"decode_qr"`
	Workers        int    `yaml:"workers"`
}

type CacheConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// LoadConfig builds the configuration from the environment only.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg
}

// LoadFile reads a YAML configuration file. Environment variables override
// values from the file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnv("SERVER_PORT", c.Server.Port)
	c.Server.MaxUploadMB = int64(getEnvAsInt("MAX_UPLOAD_MB", int(c.Server.MaxUploadMB)))

	if v, ok := lookupInt("FUZZY_THRESHOLD"); ok {
		c.Match.FuzzyThreshold = &v
	}
	c.Match.ExtractionWindow = getEnvAsInt("EXTRACTION_WINDOW", c.Match.ExtractionWindow)
	c.Match.NumberPolicy = getEnv("NUMBER_POLICY", c.Match.NumberPolicy)
	if v, ok := lookupBool("TRAILING_OFF_BY_ONE"); ok {
		c.Match.TrailingOffByOne = &v
	}
	if v, ok := lookupBool("STRICT_EXTRACTION"); ok {
		c.Match.StrictExtraction = v
	}

	c.Workbook.Sheet = getEnv("WORKBOOK_SHEET", c.Workbook.Sheet)
	c.Workbook.NameColumn = getEnv("NAME_COLUMN", c.Workbook.NameColumn)
	c.Workbook.NumberColumn = getEnv("NUMBER_COLUMN", c.Workbook.NumberColumn)

	c.OCR.TessdataPrefix = getEnv("TESSDATA_PREFIX", c.OCR.TessdataPrefix)
	c.OCR.Language = getEnv("OCR_LANGUAGE", c.OCR.Language)
	c.OCR.PaddleURL = getEnv("PADDLEOCR_API_URL", c.OCR.PaddleURL)
	if v, ok := lookupBool("OCR_DECODE_QR"); ok {
		c.OCR.DecodeQR = v
	}
	c.OCR.Workers = getEnvAsInt("EXTRACT_WORKERS", c.OCR.Workers)

	c.Cache.Path = getEnv("TEXT_CACHE_PATH", c.Cache.Path)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.MaxUploadMB <= 0 {
		c.Server.MaxUploadMB = 32
	}
	if c.Match.FuzzyThreshold == nil {
		threshold := matcher.DefaultFuzzyThreshold
		c.Match.FuzzyThreshold = &threshold
	}
	if c.Match.ExtractionWindow == 0 {
		c.Match.ExtractionWindow = matcher.DefaultWindow
	}
	if c.Match.NumberPolicy == "" {
		c.Match.NumberPolicy = string(matcher.PolicyTrailing)
	}
	if c.Match.TrailingOffByOne == nil {
		on := true
		c.Match.TrailingOffByOne = &on
	}
	if c.Workbook.NameColumn == "" {
		c.Workbook.NameColumn = "Name"
	}
	if c.Workbook.NumberColumn == "" {
		c.Workbook.NumberColumn = "SQN"
	}
	if c.OCR.TessdataPrefix == "" {
		c.OCR.TessdataPrefix = "/usr/share/tesseract-ocr/5/tessdata/"
	}
	if c.OCR.Language == "" {
		c.OCR.Language = "eng"
	}
	if c.OCR.Workers <= 0 {
		c.OCR.Workers = runtime.NumCPU()
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate rejects matcher settings outside their allowed ranges.
func (c *Config) Validate() error {
	if t := c.threshold(); t < 0 || t > 100 {
		return fmt.Errorf("%w: fuzzy_threshold %d not in 0-100", dto.ErrInvalidConfig, t)
	}
	if c.Match.ExtractionWindow <= 0 {
		return fmt.Errorf("%w: extraction_window must be positive", dto.ErrInvalidConfig)
	}
	if _, err := matcher.ParsePolicy(c.Match.NumberPolicy); err != nil {
		return fmt.Errorf("%w: %v", dto.ErrInvalidConfig, err)
	}
	return nil
}

// ResolverOptions translates the match settings into resolver options.
func (c *Config) ResolverOptions() []matcher.Option {
	policy, _ := matcher.ParsePolicy(c.Match.NumberPolicy)
	offByOne := c.Match.TrailingOffByOne == nil || *c.Match.TrailingOffByOne
	return []matcher.Option{
		matcher.WithFuzzyThreshold(c.threshold()),
		matcher.WithWindow(c.Match.ExtractionWindow),
		matcher.WithPolicy(policy),
		matcher.WithOffByOne(offByOne),
	}
}

func (c *Config) threshold() int {
	if c.Match.FuzzyThreshold == nil {
		return matcher.DefaultFuzzyThreshold
	}
	return *c.Match.FuzzyThreshold
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return n
}

func lookupInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, false
	}
	return n, true
}

func lookupBool(key string) (bool, bool) {
	v := os.Getenv(key)
	if v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return false, false
	}
	return b, true
}
