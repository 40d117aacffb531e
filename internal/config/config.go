// Package config holds the application configuration: defaults, the
// config.json file, environment overrides, and validation. The pipeline
// never reads configuration itself; the CLI layer injects the values it
// needs.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultFileName is the config file looked up in the working directory.
const DefaultFileName = "config.json"

// envPrefix is the prefix for environment variable overrides.
const envPrefix = "MODCHECKER_"

// FoldersConfig names the working directories, relative to the process
// working directory unless absolute.
type FoldersConfig struct {
	Input  string `json:"input"`
	Output string `json:"output"`
	Temp   string `json:"temp"`
}

// ThreadingConfig bounds the worker count the user may pick.
type ThreadingConfig struct {
	MaxThreads     int    `json:"max_threads"`
	RecommendedMax int    `json:"recommended_max"`
	Warning        string `json:"warning"`
}

// APIConfig configures the registry client.
type APIConfig struct {
	BaseURL        string  `json:"base_url"`
	RequestDelay   float64 `json:"request_delay"`
	UserAgent      string  `json:"user_agent"`
	TimeoutSeconds int     `json:"timeout_seconds"`
}

// UIConfig holds terminal rendering cosmetics.
type UIConfig struct {
	ProgressBarWidth int  `json:"progress_bar_width"`
	UseASCIIBars     bool `json:"use_ascii_bars"`
}

// FilesConfig names the input index and the generated artifacts.
type FilesConfig struct {
	ModIndex   string `json:"mod_index"`
	ServerPack string `json:"server_pack"`
	ClientPack string `json:"client_pack"`
	CSVAll     string `json:"csv_all"`
	CSVClient  string `json:"csv_client"`
	CSVServer  string `json:"csv_server"`
	CSVBoth    string `json:"csv_both"`
}

// UploadConfig configures the optional S3 artifact upload.
type UploadConfig struct {
	Enabled bool   `json:"enabled"`
	Bucket  string `json:"bucket"`
	Prefix  string `json:"prefix"`
	Region  string `json:"region"`
}

// LoggingConfig configures the slog output.
type LoggingConfig struct {
	Level    string `json:"level"`
	FileName string `json:"file_name"`
}

// Config is the full application configuration.
type Config struct {
	Folders   FoldersConfig   `json:"folders"`
	Threading ThreadingConfig `json:"threading"`
	API       APIConfig       `json:"api"`
	UI        UIConfig        `json:"ui"`
	Files     FilesConfig     `json:"files"`
	Upload    UploadConfig    `json:"upload"`
	Logging   LoggingConfig   `json:"logging"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Folders: FoldersConfig{
			Input:  "input",
			Output: "output",
			Temp:   "temp",
		},
		Threading: ThreadingConfig{
			MaxThreads:     10,
			RecommendedMax: 6,
			Warning:        "Using more than 6 threads may cause UI stability issues depending on your system",
		},
		API: APIConfig{
			BaseURL:        "https://api.modrinth.com/v2",
			RequestDelay:   0.5,
			UserAgent:      "ModEnvironmentChecker/1.0",
			TimeoutSeconds: 30,
		},
		UI: UIConfig{
			ProgressBarWidth: 80,
			UseASCIIBars:     true,
		},
		Files: FilesConfig{
			ModIndex:   "modrinth.index.json",
			ServerPack: "server_pack.zip",
			ClientPack: "client_pack.zip",
			CSVAll:     "Lista_Mods_Com_Ambiente.csv",
			CSVClient:  "Lista_Mods_Client.csv",
			CSVServer:  "Lista_Mods_Server.csv",
			CSVBoth:    "Lista_Mods_Both.csv",
		},
		Upload: UploadConfig{
			Enabled: false,
			Prefix:  "modchecker",
		},
		Logging: LoggingConfig{
			Level:    "info",
			FileName: "modchecker.log",
		},
	}
}

// Load reads the configuration from path (DefaultFileName when empty),
// creating the file with defaults when it does not exist. Values from the
// file override defaults section by section; environment variables override
// the file. The second return reports whether a fresh config file was
// created.
func Load(path string) (*Config, bool, error) {
	if path == "" {
		path = DefaultFileName
	}

	cfg := Default()

	created := false
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		if saveErr := cfg.Save(path); saveErr != nil {
			return nil, false, fmt.Errorf("failed to create default config: %w", saveErr)
		}
		created = true
	case err != nil:
		return nil, false, fmt.Errorf("failed to read config %s: %w", path, err)
	default:
		// Decoding over the defaults keeps any keys the file omits.
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, false, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	loadFromEnv(cfg)

	return cfg, created, nil
}

// Save writes the configuration as indented JSON.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// loadFromEnv applies MODCHECKER_* environment overrides.
func loadFromEnv(c *Config) {
	if val := os.Getenv(envPrefix + "INPUT_DIR"); val != "" {
		c.Folders.Input = val
	}
	if val := os.Getenv(envPrefix + "OUTPUT_DIR"); val != "" {
		c.Folders.Output = val
	}
	if val := os.Getenv(envPrefix + "TEMP_DIR"); val != "" {
		c.Folders.Temp = val
	}
	if val := os.Getenv(envPrefix + "MAX_THREADS"); val != "" {
		if threads, err := strconv.Atoi(val); err == nil {
			c.Threading.MaxThreads = threads
		}
	}
	if val := os.Getenv(envPrefix + "REQUEST_DELAY"); val != "" {
		if delay, err := strconv.ParseFloat(val, 64); err == nil {
			c.API.RequestDelay = delay
		}
	}
	if val := os.Getenv(envPrefix + "USER_AGENT"); val != "" {
		c.API.UserAgent = val
	}
	if val := os.Getenv(envPrefix + "BASE_URL"); val != "" {
		c.API.BaseURL = val
	}
	if val := os.Getenv(envPrefix + "LOG_LEVEL"); val != "" {
		c.Logging.Level = val
	}
	if val := os.Getenv(envPrefix + "S3_BUCKET"); val != "" {
		c.Upload.Bucket = val
		c.Upload.Enabled = true
	}
	if val := os.Getenv(envPrefix + "S3_PREFIX"); val != "" {
		c.Upload.Prefix = val
	}
	if val := os.Getenv(envPrefix + "S3_REGION"); val != "" {
		c.Upload.Region = val
	}
}

// Validate checks the configuration for values the rest of the application
// cannot work with.
func (c *Config) Validate() error {
	if c.Folders.Input == "" || c.Folders.Output == "" || c.Folders.Temp == "" {
		return fmt.Errorf("folders.input, folders.output and folders.temp are required")
	}

	if c.Threading.MaxThreads <= 0 {
		return fmt.Errorf("threading.max_threads must be greater than 0")
	}

	if c.Threading.RecommendedMax <= 0 || c.Threading.RecommendedMax > c.Threading.MaxThreads {
		return fmt.Errorf("threading.recommended_max must be between 1 and max_threads")
	}

	if c.API.RequestDelay < 0 {
		return fmt.Errorf("api.request_delay must not be negative")
	}

	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}

	if c.API.TimeoutSeconds <= 0 {
		return fmt.Errorf("api.timeout_seconds must be greater than 0")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	if c.Upload.Enabled && c.Upload.Bucket == "" {
		return fmt.Errorf("upload.bucket is required when upload is enabled")
	}

	return nil
}

// ValidateWorkerCount checks a user-chosen worker count against the
// configured bounds.
func (c *Config) ValidateWorkerCount(workers int) error {
	if workers < 1 || workers > c.Threading.MaxThreads {
		return fmt.Errorf("worker count must be between 1 and %d", c.Threading.MaxThreads)
	}
	return nil
}

// RequestDelayDuration converts the configured delay seconds to a Duration.
func (c *Config) RequestDelayDuration() time.Duration {
	return time.Duration(c.API.RequestDelay * float64(time.Second))
}

// TimeoutDuration converts the configured timeout seconds to a Duration.
func (c *Config) TimeoutDuration() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// NormalizeLogLevel maps a config level to a supported one. Unknown levels
// fall back to info.
func NormalizeLogLevel(level string) string {
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "error":
		return strings.ToLower(level)
	default:
		return "info"
	}
}
