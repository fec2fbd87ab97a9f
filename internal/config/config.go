// ? config loading + instance ID
package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	InstanceID     string
	EventLogPath   string
	DenylistTool   string
	MetricsAddr    string
	DiagLogFile    string
	DataDir        string
	CommandTimeout time.Duration
	DryRun         bool
	IsDev          bool
}

// LoadEnvFile merges an optional .env from the working directory into the
// environment. Variables already set win.
func LoadEnvFile() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("config: no .env file found, relying on system env vars")
	}
}

// DiagLogFile is the diagnostics log path, readable before Load so the
// logger can be installed first.
func DiagLogFile() string {
	return getEnv("YTB_DIAG_LOG_FILE", "")
}

// Load reads environment variables and returns a Config. Call LoadEnvFile
// first to pick up a .env. devMode comes from main so flag parsing stays
// there.
func Load(devMode bool) *Config {
	cfg := &Config{
		IsDev:          devMode,
		EventLogPath:   getEnv("YTB_EVENT_LOG", defaultEventLog(devMode)),
		DenylistTool:   getEnv("YTB_DENYLIST_TOOL", "pihole"),
		MetricsAddr:    getEnv("YTB_METRICS_ADDR", ""),
		DiagLogFile:    DiagLogFile(),
		DataDir:        getEnv("YTB_DATA_DIR", defaultDataDir(devMode)),
		DryRun:         getEnvAsBool("YTB_DRY_RUN", devMode),
		CommandTimeout: time.Duration(getEnvAsInt("YTB_COMMAND_TIMEOUT_SEC", 10)) * time.Second,
	}

	cfg.InstanceID = getOrGenerateInstanceID(filepath.Join(cfg.DataDir, "instance-id.lock"))

	return cfg
}

func defaultEventLog(devMode bool) string {
	if devMode {
		return "./ytdnsblocker.log"
	}
	return "/var/log/ytdnsblocker.log"
}

func defaultDataDir(devMode bool) string {
	if devMode {
		return "./data"
	}
	return "/var/lib/ytblocker"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("config: invalid integer env var, using default",
			"key", key,
			"value", raw,
			"default", fallback,
		)
		return fallback
	}
	return v
}

func getEnvAsBool(key string, fallback bool) bool {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		slog.Warn("config: invalid boolean env var, using default",
			"key", key,
			"value", raw,
			"default", fallback,
		)
		return fallback
	}
	return v
}
