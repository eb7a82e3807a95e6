// Package config loads the engine's TOML configuration file, following the
// shape of the teacher's internal/catalogsrv/config package: a package-level
// ConfigParam struct with toml tags, a LoadConfig/Config pair, and
// environment-variable overrides for the fields most likely to be set by a
// container orchestrator rather than checked into a config file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// DBConfig holds database connection parameters.
type DBConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	DBName   string `toml:"dbname"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	SSLMode  string `toml:"sslmode"`
}

// ContentStoreConfig configures the ContentStore collaborator (§6).
type ContentStoreConfig struct {
	Dir string `toml:"dir"` // root directory for hash-addressed blobs
}

// ConfigParam holds all configuration for the learncorectl process.
type ConfigParam struct {
	FormatVersion string              `toml:"format_version"`
	DB            DBConfig            `toml:"db"`
	ContentStore  ContentStoreConfig  `toml:"content_store"`
}

const Version = "1"

var cfg *ConfigParam

// Config returns the currently loaded configuration, or nil if none has
// been loaded yet.
func Config() *ConfigParam {
	return cfg
}

// DSN renders the database configuration as a libpq connection string.
func (c *ConfigParam) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.DBName, c.DB.SSLMode)
}

// LoadConfig reads and validates a TOML config file, applying environment
// overrides for DSN fields so the same image can be deployed against
// different databases without rewriting the file.
func LoadConfig(filename string) error {
	if filename == "" {
		return fmt.Errorf("config filename is required")
	}
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	cfg = &ConfigParam{}
	if _, err := toml.Decode(string(content), cfg); err != nil {
		return fmt.Errorf("error parsing config file: %w", err)
	}
	applyEnvOverrides(cfg)
	return validate(cfg)
}

func applyEnvOverrides(c *ConfigParam) {
	if v := os.Getenv("LEARNCORE_DB_HOST"); v != "" {
		c.DB.Host = v
	}
	if v := os.Getenv("LEARNCORE_DB_NAME"); v != "" {
		c.DB.DBName = v
	}
	if v := os.Getenv("LEARNCORE_DB_USER"); v != "" {
		c.DB.User = v
	}
	if v := os.Getenv("LEARNCORE_DB_PASSWORD"); v != "" {
		c.DB.Password = v
	}
	if v := os.Getenv("LEARNCORE_CONTENT_DIR"); v != "" {
		c.ContentStore.Dir = v
	}
}

func validate(c *ConfigParam) error {
	if c.FormatVersion != Version {
		return fmt.Errorf("unsupported config file format version: %s", c.FormatVersion)
	}
	if c.DB.DBName == "" {
		return fmt.Errorf("db.dbname is required")
	}
	if c.ContentStore.Dir == "" {
		return fmt.Errorf("content_store.dir is required")
	}
	return nil
}

var isTest = false

// IsTest reports whether the process is running under TestInit.
func IsTest() bool { return isTest }

// TestInit locates the module's go.mod by walking up from the working
// directory and loads learncorectl.test.conf from the repository root,
// mirroring the teacher's config.TestInit used by db_test.go-style tests.
func TestInit() {
	isTest = true
	wd, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	root := wd
	for {
		if _, err := os.Stat(filepath.Join(root, "go.mod")); err == nil {
			break
		}
		parent := filepath.Dir(root)
		if parent == root {
			panic("could not find project root (go.mod)")
		}
		root = parent
	}
	if err := LoadConfig(filepath.Join(root, "learncorectl.test.conf")); err != nil {
		panic(fmt.Errorf("error loading test config: %w", err))
	}
}
