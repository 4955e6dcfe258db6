package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port                 string
	Env                  string
	LogLevel             string
	CORSAllowOrigin      []string
	PageSpeedAPIKey      string
	PageSpeedTimeout     time.Duration
	CrUXTimeout          time.Duration
	ReportStore          string
	ReportsDir           string
	AWSRegion            string
	S3Bucket             string
	S3Prefix             string
	SSEKMSKeyID          string
	CatalogDir           string
	AnalyzeRatePerMinute int
	AnalyzeRateBurst     int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	return Config{
		Port:                 getEnv("PORT", "8080"),
		Env:                  normalizeEnv(getEnv("APP_ENV", "dev")),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		CORSAllowOrigin:      splitAndTrim(getEnv("CORS_ALLOW_ORIGIN", "*")),
		PageSpeedAPIKey:      getEnv("PAGESPEED_INSIGHTS_API_KEY", ""),
		PageSpeedTimeout:     getSeconds("PAGESPEED_TIMEOUT_SECONDS", 120),
		CrUXTimeout:          getSeconds("CRUX_TIMEOUT_SECONDS", 30),
		ReportStore:          normalizeStoreType(getEnv("REPORT_STORE", "local")),
		ReportsDir:           getEnv("REPORTS_DIR", "./reports"),
		AWSRegion:            getEnv("AWS_REGION", ""),
		S3Bucket:             getEnv("S3_BUCKET", ""),
		S3Prefix:             getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:          getEnv("S3_SSE_KMS_KEY_ID", ""),
		CatalogDir:           getEnv("CATALOG_DIR", ""),
		AnalyzeRatePerMinute: getInt("ANALYZE_RATE_PER_MINUTE", 6),
		AnalyzeRateBurst:     getInt("ANALYZE_RATE_BURST", 3),
	}
}

func getEnv(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
}

func getInt(key string, def int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func getSeconds(key string, def int) time.Duration {
	n := getInt(key, def)
	if n == 0 {
		n = def
	}
	return time.Duration(n) * time.Second
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	case "none", "off":
		return "none"
	default:
		return "local"
	}
}
