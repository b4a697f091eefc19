package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingCredentials is returned by Validate when the store endpoint or
// its credential is not configured.
var ErrMissingCredentials = errors.New("SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY environment variables required")

// DefaultZipCode is a Washington DC postal code with good coverage of the
// priority stores.
const DefaultZipCode = "20001"

// Config holds all application configuration loaded from environment variables.
type Config struct {
	SupabaseURL string
	SupabaseKey string
	ZipCode     string

	FlippBaseURL string
	FlippLocale  string
	Transport    string
	ChromeBin    string
	HTTPTimeout  time.Duration

	BatchSize         int
	DBConnectAttempts int

	CSVOutputPath string
	MetricsPath   string
	KeywordsFile  string
	LogLevel      string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() *Config {
	supabaseURL := getEnv("SUPABASE_URL", "")
	if supabaseURL == "" {
		supabaseURL = getEnv("NEXT_PUBLIC_SUPABASE_URL", "")
	}

	return &Config{
		SupabaseURL: supabaseURL,
		SupabaseKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
		ZipCode:     getEnv("SCRAPER_ZIP_CODE", DefaultZipCode),

		FlippBaseURL: getEnv("FLIPP_BASE_URL", "https://backflipp.wishabi.com/flipp"),
		FlippLocale:  getEnv("FLIPP_LOCALE", "en-us"),
		Transport:    strings.ToLower(getEnv("FLIPP_TRANSPORT", "http")),
		ChromeBin:    getEnv("CHROME_BIN", ""),
		HTTPTimeout:  getEnvDuration("HTTP_TIMEOUT", 30*time.Second),

		BatchSize:         getEnvInt("SYNC_BATCH_SIZE", 100),
		DBConnectAttempts: getEnvInt("DB_CONNECT_ATTEMPTS", 5),

		CSVOutputPath: getEnv("CSV_OUTPUT_PATH", ""),
		MetricsPath:   getEnv("METRICS_TEXTFILE", ""),
		KeywordsFile:  getEnv("KEYWORDS_FILE", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}
}

// Validate reports configuration that would make a sync impossible.
func (c *Config) Validate() error {
	if c.SupabaseURL == "" || c.SupabaseKey == "" {
		return ErrMissingCredentials
	}
	if c.Transport != "http" && c.Transport != "browser" {
		return errors.New("FLIPP_TRANSPORT must be \"http\" or \"browser\"")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
