package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gofile-uploader/telegram-gofile-bot/internal/utils"
)

const (
	DefaultGoFileUploadURL = "https://upload.gofile.io/uploadfile"

	DefaultMaxUploadSize   = 4 * 1024 * 1024 * 1024 // 4 GiB
	DefaultMaxDownloadSize = 2 * 1024 * 1024 * 1024 // 2 GiB
	DefaultChunkSize       = 1024 * 1024            // 1 MiB

	DefaultRequestTimeout         = 60 * time.Second
	DefaultDownloadTimeout        = 30 * time.Minute
	DefaultUploadTimeout          = 30 * time.Minute
	DefaultProgressUpdateInterval = 2 * time.Second

	DefaultCleanupRetention = 2 * time.Hour
	DefaultSweepInterval    = 30 * time.Minute
)

type Config struct {
	BotToken        string
	GoFileUploadURL string
	DownloadDir     string
	TempDir         string
	DataDir         string
	LogLevel        string

	DownloadSettings DownloadConfig
	UploadSettings   UploadConfig
	CleanupSettings  CleanupConfig
	YTDLPSettings    YTDLPConfig
}

type DownloadConfig struct {
	MaxDownloadSize        int64
	ChunkSize              int64
	RequestTimeout         time.Duration
	DownloadTimeout        time.Duration
	ProgressUpdateInterval time.Duration
}

type UploadConfig struct {
	MaxUploadSize int64
	UploadTimeout time.Duration
}

type CleanupConfig struct {
	Retention     time.Duration
	SweepInterval time.Duration
}

type YTDLPConfig struct {
	Enabled      bool
	VideoFormat  string
	AudioFormat  string
	ExtractAudio bool
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func NewConfig() (*Config, error) {
	config := &Config{
		BotToken:        getEnv("BOT_TOKEN", ""),
		GoFileUploadURL: getEnv("GOFILE_UPLOAD_URL", DefaultGoFileUploadURL),
		DownloadDir:     getEnv("DOWNLOAD_DIR", "./downloads"),
		TempDir:         getEnv("TEMP_DIR", "./temp"),
		DataDir:         getEnv("DATA_DIR", "./data"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),

		DownloadSettings: DownloadConfig{
			MaxDownloadSize:        getEnvInt64("MAX_DOWNLOAD_SIZE", DefaultMaxDownloadSize),
			ChunkSize:              getEnvInt64("CHUNK_SIZE", DefaultChunkSize),
			RequestTimeout:         getEnvDuration("REQUEST_TIMEOUT", DefaultRequestTimeout),
			DownloadTimeout:        getEnvDuration("DOWNLOAD_TIMEOUT", DefaultDownloadTimeout),
			ProgressUpdateInterval: getEnvDuration("PROGRESS_UPDATE_INTERVAL", DefaultProgressUpdateInterval),
		},

		UploadSettings: UploadConfig{
			MaxUploadSize: getEnvInt64("MAX_UPLOAD_SIZE", DefaultMaxUploadSize),
			UploadTimeout: getEnvDuration("UPLOAD_TIMEOUT", DefaultUploadTimeout),
		},

		CleanupSettings: CleanupConfig{
			Retention:     getEnvDuration("CLEANUP_RETENTION", DefaultCleanupRetention),
			SweepInterval: getEnvDuration("CLEANUP_SWEEP_INTERVAL", DefaultSweepInterval),
		},

		YTDLPSettings: YTDLPConfig{
			Enabled:      getEnvBool("YTDLP_ENABLED", true),
			VideoFormat:  getEnv("YTDLP_VIDEO_FORMAT", "best"),
			AudioFormat:  getEnv("YTDLP_AUDIO_FORMAT", "mp3"),
			ExtractAudio: getEnvBool("YTDLP_EXTRACT_AUDIO", false),
		},
	}

	if err := config.validate(); err != nil {
		return nil, utils.WrapError(err, "configuration validation failed", nil)
	}

	return config, nil
}

// EnsureDirs creates the ephemeral and data directories. Called once from the
// process bootstrap; nothing else in the codebase creates directories.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.DownloadDir, c.TempDir, c.DataDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return utils.WrapError(err, "failed to create directory", map[string]any{
				"dir": dir,
			})
		}
	}
	return nil
}

// EphemeralDirs lists the directories the janitor is allowed to touch.
func (c *Config) EphemeralDirs() []string {
	return []string{c.TempDir, c.DownloadDir}
}

func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "gofilebot.db")
}

func (c *Config) validate() error {
	if err := c.validateRequiredFields(); err != nil {
		return err
	}

	if err := c.validateDownloadSettings(); err != nil {
		return err
	}

	return c.validateUploadSettings()
}

func (c *Config) validateRequiredFields() error {
	var missingFields []string

	if c.BotToken == "" {
		missingFields = append(missingFields, "BOT_TOKEN")
	}
	if c.DownloadDir == "" {
		missingFields = append(missingFields, "DOWNLOAD_DIR")
	}
	if c.TempDir == "" {
		missingFields = append(missingFields, "TEMP_DIR")
	}

	if len(missingFields) > 0 {
		return utils.WrapError(utils.ErrConfigurationError, "missing required environment variables", map[string]any{
			"missing_fields": missingFields,
		})
	}

	return nil
}

func (c *Config) validateDownloadSettings() error {
	if c.DownloadSettings.MaxDownloadSize <= 0 {
		return utils.WrapError(utils.ErrConfigurationError, "max download size must be positive", nil)
	}
	if c.DownloadSettings.ChunkSize <= 0 {
		return utils.WrapError(utils.ErrConfigurationError, "chunk size must be positive", nil)
	}
	if c.DownloadSettings.DownloadTimeout < 0 || c.DownloadSettings.RequestTimeout < 0 {
		return utils.WrapError(utils.ErrConfigurationError, "timeouts cannot be negative", nil)
	}
	if c.DownloadSettings.ProgressUpdateInterval <= 0 {
		return utils.WrapError(utils.ErrConfigurationError, "progress update interval must be positive", nil)
	}
	return nil
}

func (c *Config) validateUploadSettings() error {
	if c.UploadSettings.MaxUploadSize <= 0 {
		return utils.WrapError(utils.ErrConfigurationError, "max upload size must be positive", nil)
	}
	if c.UploadSettings.UploadTimeout < 0 {
		return utils.WrapError(utils.ErrConfigurationError, "upload timeout cannot be negative", nil)
	}
	return nil
}
