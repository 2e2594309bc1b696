package db

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	Username     string `yaml:"user"`
	Password     string `yaml:"password"`
	DBName       string `yaml:"dbname"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

type Certs struct {
	Cert string `yaml:"cert"`
	Key  string `yaml:"key"`
}

type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

// FaceConfig tunes the biometric pipeline. MatchThreshold is the largest
// euclidean distance still accepted as the same person; lower is stricter.
type FaceConfig struct {
	ServiceURL     string        `yaml:"service_url"`
	Dimension      int           `yaml:"dimension"`
	MatchThreshold float64       `yaml:"match_threshold"`
	MaxImageBytes  int           `yaml:"max_image_bytes"`
	MinFaceSize    int           `yaml:"min_face_size"`
	ExtractTimeout time.Duration `yaml:"extract_timeout"`
}

type AttendanceConfig struct {
	StartTime string `yaml:"start_time"` // "15:04:05"
	Timezone  string `yaml:"timezone"`
}

type Config struct {
	Version     string           `yaml:"version"`
	Mode        string           `yaml:"mode"`
	Server      ServerConfig     `yaml:"server"`
	DB          DatabaseConfig   `yaml:"database"`
	Certificate Certs            `yaml:"certificate"`
	Auth        AuthConfig       `yaml:"auth"`
	Face        FaceConfig       `yaml:"face"`
	Attendance  AttendanceConfig `yaml:"attendance"`
}

const (
	DefaultAddr           = ":8443"
	DefaultDimension      = 128
	DefaultMatchThreshold = 0.6
	DefaultMaxImageBytes  = 5 << 20
	DefaultMinFaceSize    = 100
	DefaultExtractTimeout = 10 * time.Second
	DefaultStartTime      = "09:00:00"
	DefaultTimezone       = "UTC"
	DefaultTokenTTL       = time.Hour
	StartTimeLayout       = "15:04:05"
)

func LoadConfig(path string) (*Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Auth.TokenTTL <= 0 {
		c.Auth.TokenTTL = DefaultTokenTTL
	}
	if c.Face.Dimension == 0 {
		c.Face.Dimension = DefaultDimension
	}
	if c.Face.MatchThreshold == 0 {
		c.Face.MatchThreshold = DefaultMatchThreshold
	}
	if c.Face.MaxImageBytes == 0 {
		c.Face.MaxImageBytes = DefaultMaxImageBytes
	}
	if c.Face.MinFaceSize == 0 {
		c.Face.MinFaceSize = DefaultMinFaceSize
	}
	if c.Face.ExtractTimeout == 0 {
		c.Face.ExtractTimeout = DefaultExtractTimeout
	}
	if c.Attendance.StartTime == "" {
		c.Attendance.StartTime = DefaultStartTime
	}
	if c.Attendance.Timezone == "" {
		c.Attendance.Timezone = DefaultTimezone
	}
}

func (c *Config) Validate() error {
	if c.Mode != "dev" && c.Mode != "release" {
		return fmt.Errorf("mode must be dev or release, got %q", c.Mode)
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	if c.Face.Dimension < 0 {
		return errors.New("face.dimension must be positive")
	}
	if c.Face.MatchThreshold < 0 {
		return errors.New("face.match_threshold must be positive")
	}
	if c.Face.MaxImageBytes < 0 || c.Face.MinFaceSize < 0 || c.Face.ExtractTimeout < 0 {
		return errors.New("face limits must not be negative")
	}
	if _, err := time.Parse(StartTimeLayout, c.Attendance.StartTime); err != nil {
		return fmt.Errorf("attendance.start_time must be HH:MM:SS: %w", err)
	}
	if _, err := time.LoadLocation(c.Attendance.Timezone); err != nil {
		return fmt.Errorf("attendance.timezone: %w", err)
	}
	return nil
}
