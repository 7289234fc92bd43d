package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Aashish23092/lazy-search/dto"
	"github.com/Aashish23092/lazy-search/matcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"SERVER_PORT", "MAX_UPLOAD_MB", "FUZZY_THRESHOLD", "EXTRACTION_WINDOW",
	"NUMBER_POLICY", "TRAILING_OFF_BY_ONE", "STRICT_EXTRACTION", "WORKBOOK_SHEET",
	"NAME_COLUMN", "NUMBER_COLUMN", "OCR_LANGUAGE", "PADDLEOCR_API_URL",
	"OCR_DECODE_QR", "EXTRACT_WORKERS", "TEXT_CACHE_PATH", "LOG_LEVEL",
}

// clearEnv blanks every key the loader reads; empty values count as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func intPtr(n int) *int { return &n }

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)
	cfg := LoadConfig()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.EqualValues(t, 32, cfg.Server.MaxUploadMB)
	require.NotNil(t, cfg.Match.FuzzyThreshold)
	assert.Equal(t, matcher.DefaultFuzzyThreshold, *cfg.Match.FuzzyThreshold)
	assert.Equal(t, matcher.DefaultWindow, cfg.Match.ExtractionWindow)
	assert.Equal(t, string(matcher.PolicyTrailing), cfg.Match.NumberPolicy)
	require.NotNil(t, cfg.Match.TrailingOffByOne)
	assert.True(t, *cfg.Match.TrailingOffByOne)
	assert.False(t, cfg.Match.StrictExtraction)
	assert.Equal(t, "Name", cfg.Workbook.NameColumn)
	assert.Equal(t, "SQN", cfg.Workbook.NumberColumn)
	assert.Positive(t, cfg.OCR.Workers)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("FUZZY_THRESHOLD", "85")
	t.Setenv("EXTRACTION_WINDOW", "20")
	t.Setenv("NUMBER_POLICY", "leftmost")
	t.Setenv("TRAILING_OFF_BY_ONE", "false")
	t.Setenv("STRICT_EXTRACTION", "true")
	t.Setenv("NAME_COLUMN", "Member")
	t.Setenv("EXTRACT_WORKERS", "not-a-number")

	cfg := LoadConfig()
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 85, *cfg.Match.FuzzyThreshold)
	assert.Equal(t, 20, cfg.Match.ExtractionWindow)
	assert.Equal(t, "leftmost", cfg.Match.NumberPolicy)
	assert.False(t, *cfg.Match.TrailingOffByOne)
	assert.True(t, cfg.Match.StrictExtraction)
	assert.Equal(t, "Member", cfg.Workbook.NameColumn)
	assert.Positive(t, cfg.OCR.Workers)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "lazysearch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "7000"
match:
  fuzzy_threshold: 90
  number_policy: leftmost-in-line
  trailing_off_by_one: false
workbook:
  sheet: Roster
cache:
  path: /tmp/text.db
`), 0o644))
	t.Setenv("SERVER_PORT", "7001")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "7001", cfg.Server.Port)
	assert.Equal(t, 90, *cfg.Match.FuzzyThreshold)
	assert.Equal(t, matcher.DefaultWindow, cfg.Match.ExtractionWindow)
	assert.Equal(t, "leftmost-in-line", cfg.Match.NumberPolicy)
	assert.False(t, *cfg.Match.TrailingOffByOne)
	assert.Equal(t, "Roster", cfg.Workbook.Sheet)
	assert.Equal(t, "/tmp/text.db", cfg.Cache.Path)
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("match: [1, 2"), 0o644))
	_, err = LoadFile(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"threshold above 100", func(c *Config) { c.Match.FuzzyThreshold = intPtr(101) }},
		{"negative threshold", func(c *Config) { c.Match.FuzzyThreshold = intPtr(-1) }},
		{"negative window", func(c *Config) { c.Match.ExtractionWindow = -5 }},
		{"unknown policy", func(c *Config) { c.Match.NumberPolicy = "rightmost" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := LoadConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			assert.ErrorIs(t, err, dto.ErrInvalidConfig)
			assert.True(t, dto.IsInputError(err))
		})
	}
}

func TestResolverOptions(t *testing.T) {
	clearEnv(t)
	cfg := LoadConfig()
	cfg.Match.NumberPolicy = "leftmost"

	r := matcher.NewResolver(cfg.ResolverOptions()...)
	corpus := matcher.NewCorpus([]matcher.Document{{ID: "a", Text: "7 john smith 43"}})
	assert.Equal(t, matcher.Result{"John Smith": "7"}, r.Resolve([]string{"John Smith"}, corpus))
}

func TestZeroThresholdIsKept(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "lazysearch.yaml")
	require.NoError(t, os.WriteFile(path, []byte("match:\n  fuzzy_threshold: 0\n"), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Match.FuzzyThreshold)
	assert.Equal(t, 0, *cfg.Match.FuzzyThreshold)
	assert.NoError(t, cfg.Validate())

	t.Setenv("FUZZY_THRESHOLD", "0")
	cfg = LoadConfig()
	assert.Equal(t, 0, *cfg.Match.FuzzyThreshold)
}
