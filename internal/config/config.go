package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/muhammadolammi/skillscan/internal/logger"
	"gopkg.in/yaml.v3"
)

// DefaultSkills is the batch skill list used when none is configured.
var DefaultSkills = []string{"Python", "Java", "Machine Learning", "Data Analysis", "Power BI", "Sales", "Marketing"}

type Config struct {
	Skills    []string      `yaml:"skills"`
	ResumeDir string        `yaml:"resume_dir"`
	Workers   int           `yaml:"workers"`
	Server    ServerConfig  `yaml:"server"`
	R2        R2Config      `yaml:"r2"`
	RabbitMQ  RabbitConfig  `yaml:"rabbitmq"`
	Logger    logger.Config `yaml:"logger"`
}

type ServerConfig struct {
	Address        string `yaml:"address"`
	MaxUploadMB    int    `yaml:"max_upload_mb"`
	UploadDir      string `yaml:"upload_dir"` // parent of per-request upload dirs, empty means os.TempDir
	RequestsPerMin int    `yaml:"requests_per_minute"`
}

// R2Config points at a Cloudflare R2 (or any S3-compatible) bucket that
// resumes can be pulled from.
type R2Config struct {
	AccountID string `yaml:"account_id"`
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Region    string `yaml:"region"`
}

func (c R2Config) Enabled() bool {
	return c.Bucket != "" && (c.AccountID != "" || c.Endpoint != "")
}

// BaseEndpoint resolves the S3 endpoint, defaulting to the R2 account URL.
func (c R2Config) BaseEndpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", c.AccountID)
}

type RabbitConfig struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
}

func Default() *Config {
	skills := make([]string, len(DefaultSkills))
	copy(skills, DefaultSkills)
	return &Config{
		Skills:    skills,
		ResumeDir: "resumes",
		Workers:   1,
		Server: ServerConfig{
			Address:        ":8080",
			MaxUploadMB:    10,
			RequestsPerMin: 30,
		},
		R2: R2Config{
			Region: "auto",
		},
		RabbitMQ: RabbitConfig{
			Exchange: "scan_updates",
		},
		Logger: logger.Config{
			Level:  "info",
			Format: "pretty",
		},
	}
}

// Load reads the YAML file at path on top of the defaults, then applies
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// defaults only
		case err != nil:
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("SKILLSCAN_SKILLS"); v != "" {
		c.Skills = strings.Split(v, ",")
	}
	setString(&c.ResumeDir, "SKILLSCAN_RESUME_DIR")
	if v := os.Getenv("APP_PORT"); v != "" {
		if !strings.Contains(v, ":") {
			v = ":" + v
		}
		c.Server.Address = v
	}
	setString(&c.Logger.Level, "LOG_LEVEL")
	setString(&c.R2.AccountID, "R2_ACCOUNT_ID")
	setString(&c.R2.Bucket, "R2_BUCKET")
	setString(&c.R2.AccessKey, "R2_ACCESS_KEY")
	setString(&c.R2.SecretKey, "R2_SECRET_KEY")
	setString(&c.RabbitMQ.URL, "RABBITMQ_URL")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.Server.MaxUploadMB < 1 {
		return fmt.Errorf("server.max_upload_mb must be at least 1, got %d", c.Server.MaxUploadMB)
	}
	if c.R2.Bucket != "" && (c.R2.AccessKey == "" || c.R2.SecretKey == "") {
		return errors.New("r2 bucket configured without access_key/secret_key")
	}
	return nil
}

// MaxUploadBytes is the per-file upload limit.
func (s ServerConfig) MaxUploadBytes() int64 {
	return int64(s.MaxUploadMB) << 20
}
