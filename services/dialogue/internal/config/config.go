package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"dialoguehub/pkg/domain"
	"dialoguehub/pkg/fileindex"
	"gopkg.in/yaml.v3"
)

// ConfigPath is the default config location; DIALOGUE_CONFIG overrides it.
const ConfigPath = "config.yaml"

// Folder backends.
const (
	BackendDrive = "drive"
	BackendMinio = "minio"
)

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	Port                        string   `yaml:"port"`
	LogLevel                    string   `yaml:"logLevel"`
	Mode                        string   `yaml:"mode"`
	FolderBackend               string   `yaml:"folderBackend"`
	FolderID                    string   `yaml:"folderID"`
	GoogleCredentials           string   `yaml:"googleCredentials"`
	DatabaseURL                 string   `yaml:"databaseURL"`
	MongoDatabase               string   `yaml:"mongoDatabase"`
	MinioEndpoint               string   `yaml:"minioEndpoint"`
	MinioAccessKey              string   `yaml:"minioAccessKey"`
	MinioSecretKey              string   `yaml:"minioSecretKey"`
	MinioBucket                 string   `yaml:"minioBucket"`
	MinioUseSSL                 bool     `yaml:"minioUseSSL"`
	AudioExtensions             []string `yaml:"audioExtensions"`
	RedisAddr                   string   `yaml:"redisAddr"`
	RedisPassword               string   `yaml:"redisPassword"`
	HighlightRateLimitPerMinute int      `yaml:"highlightRateLimitPerMinute"`
	TrustedProxyCIDRs           []string `yaml:"trustedProxyCidrs"`
}

// Load reads config from path (defaults to config.yaml). A missing file is
// not an error so the service can run from environment variables alone.
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = ConfigPath
	}
	if v := os.Getenv("DIALOGUE_CONFIG"); v != "" {
		path = v
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return cfg, fmt.Errorf("read config: %w", err)
	}
	applyEnv(&cfg)
	applyDefaults(&cfg)
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *FileConfig) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = strings.TrimSpace(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.TrimSpace(v)
	}
	if v := os.Getenv("DIALOGUE_MODE"); v != "" {
		cfg.Mode = strings.TrimSpace(v)
	}
	if v := os.Getenv("DIALOGUE_FOLDER_BACKEND"); v != "" {
		cfg.FolderBackend = strings.TrimSpace(v)
	}
	if v := os.Getenv("DRIVE_FOLDER_ID"); v != "" {
		cfg.FolderID = strings.TrimSpace(v)
	}
	if v := os.Getenv("GOOGLE_CREDENTIALS"); v != "" {
		cfg.GoogleCredentials = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("MONGODB_URI"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("MONGODB_DATABASE"); v != "" {
		cfg.MongoDatabase = v
	}
	if v := os.Getenv("MINIO_ENDPOINT"); v != "" {
		cfg.MinioEndpoint = v
	}
	if v := os.Getenv("MINIO_ACCESS_KEY"); v != "" {
		cfg.MinioAccessKey = v
	}
	if v := os.Getenv("MINIO_SECRET_KEY"); v != "" {
		cfg.MinioSecretKey = v
	}
	if v := os.Getenv("MINIO_BUCKET"); v != "" {
		cfg.MinioBucket = v
	}
	if v := os.Getenv("MINIO_USE_SSL"); v == "true" {
		cfg.MinioUseSSL = true
	}
	if v, ok := os.LookupEnv("DIALOGUE_AUDIO_EXTENSIONS"); ok {
		if strings.TrimSpace(v) == "*" {
			cfg.AudioExtensions = []string{}
		} else {
			cfg.AudioExtensions = splitCSV(v)
		}
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("DIALOGUE_HIGHLIGHT_RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			cfg.HighlightRateLimitPerMinute = n
		}
	}
	if v := os.Getenv("DIALOGUE_TRUSTED_PROXY_CIDRS"); v != "" {
		cfg.TrustedProxyCIDRs = splitCSV(v)
	}
}

func applyDefaults(cfg *FileConfig) {
	if cfg.Port == "" {
		cfg.Port = "3000"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Mode == "" {
		cfg.Mode = string(domain.ModeDatabase)
	}
	if cfg.FolderBackend == "" {
		cfg.FolderBackend = BackendDrive
	}
	// nil means "not configured"; an explicit empty list selects prefix-only matching.
	if cfg.AudioExtensions == nil {
		cfg.AudioExtensions = append([]string(nil), fileindex.DefaultAudioExtensions...)
	}
}

func validateConfig(cfg FileConfig) error {
	mode, ok := ParseMode(cfg.Mode)
	if !ok {
		return fmt.Errorf("config: unknown mode %q (want files, hybrid or database)", cfg.Mode)
	}
	if mode.UsesDatabase() && strings.TrimSpace(cfg.DatabaseURL) == "" {
		return errors.New("config: databaseURL is required in hybrid and database modes (set DATABASE_URL or MONGODB_URI)")
	}
	switch cfg.FolderBackend {
	case BackendDrive:
		if strings.TrimSpace(cfg.FolderID) == "" {
			return errors.New("config: folderID is required for the drive backend (set DRIVE_FOLDER_ID)")
		}
	case BackendMinio:
		if cfg.MinioEndpoint == "" || cfg.MinioAccessKey == "" || cfg.MinioSecretKey == "" || cfg.MinioBucket == "" {
			return errors.New("config: minioEndpoint, minioAccessKey, minioSecretKey and minioBucket are required for the minio backend")
		}
	default:
		return fmt.Errorf("config: unknown folderBackend %q (want drive or minio)", cfg.FolderBackend)
	}
	if cfg.HighlightRateLimitPerMinute < 0 {
		return errors.New("config: highlightRateLimitPerMinute must be >= 0")
	}
	if cfg.HighlightRateLimitPerMinute > 0 && strings.TrimSpace(cfg.RedisAddr) == "" {
		return errors.New("config: redisAddr is required when highlightRateLimitPerMinute is set")
	}
	return nil
}

// ParseMode maps a config string to a domain.Mode.
func ParseMode(v string) (domain.Mode, bool) {
	switch domain.Mode(strings.ToLower(strings.TrimSpace(v))) {
	case domain.ModeFiles:
		return domain.ModeFiles, true
	case domain.ModeHybrid:
		return domain.ModeHybrid, true
	case domain.ModeDatabase:
		return domain.ModeDatabase, true
	default:
		return "", false
	}
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
