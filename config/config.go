package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

type SysConfig struct {
	Workdir  string `yaml:"workdir" json:"workdir"`
	Location string `yaml:"location" json:"location"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type WebConfig struct {
	Host string `yaml:"host" json:"host"`
	Port int    `yaml:"port" json:"port"`
}

type DBConfig struct {
	// Type selects the store backend: "bolt" (default, local file) or
	// "postgres" (shared household database).
	Type string `yaml:"type" json:"type"`
	// Path of the bolt file, relative paths resolved under Workdir.
	Path string `yaml:"path" json:"path"`
	// DSN for the postgres backend.
	DSN string `yaml:"dsn" json:"dsn"`
}

type LogConfig struct {
	Mode       string `yaml:"mode" json:"mode"`
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

type AppConfig struct {
	System   SysConfig `yaml:"system" json:"system"`
	Web      WebConfig `yaml:"web" json:"web"`
	Database DBConfig  `yaml:"database" json:"database"`
	Logger   LogConfig `yaml:"logger" json:"logger"`
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Workdir:  "/var/despensa",
		Location: "Europe/Lisbon",
		Debug:    false,
	},
	Web: WebConfig{
		Host: "127.0.0.1",
		Port: 1879,
	},
	Database: DBConfig{
		Type: "bolt",
		Path: "despensa.db",
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: false,
		Filename:   "despensa.log",
	},
}

// LoadConfig reads the yaml file when it exists, then applies
// environment overrides. A missing file is not an error; defaults apply.
// A file that exists but does not parse is reported on stderr (logging is
// not initialized yet at load time) and defaults apply.
func LoadConfig(cfile string) *AppConfig {
	cfg := *DefaultAppConfig
	if cfile != "" {
		if data, err := os.ReadFile(cfile); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				fmt.Fprintf(os.Stderr, "config file %s ignored: %v\n", cfile, err)
				cfg = *DefaultAppConfig
			}
		}
	}
	setEnvValues(&cfg)
	return &cfg
}

func setEnvValues(cfg *AppConfig) {
	setEnvString(&cfg.System.Workdir, "DESPENSA_WORKDIR")
	setEnvString(&cfg.System.Location, "DESPENSA_LOCATION")
	setEnvBool(&cfg.System.Debug, "DESPENSA_DEBUG")
	setEnvString(&cfg.Web.Host, "DESPENSA_WEB_HOST")
	setEnvInt(&cfg.Web.Port, "DESPENSA_WEB_PORT")
	setEnvString(&cfg.Database.Type, "DESPENSA_DB_TYPE")
	setEnvString(&cfg.Database.Path, "DESPENSA_DB_PATH")
	setEnvString(&cfg.Database.DSN, "DESPENSA_DB_DSN")
	setEnvString(&cfg.Logger.Mode, "DESPENSA_LOG_MODE")
	setEnvBool(&cfg.Logger.FileEnable, "DESPENSA_LOG_FILE_ENABLE")
	setEnvString(&cfg.Logger.Filename, "DESPENSA_LOG_FILENAME")
}

func setEnvString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setEnvInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = cast.ToInt(v)
	}
}

func setEnvBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = cast.ToBool(v)
	}
}

// StorePath resolves the bolt file location under the workdir.
func (c *AppConfig) StorePath() string {
	if filepath.IsAbs(c.Database.Path) {
		return c.Database.Path
	}
	return filepath.Join(c.System.Workdir, c.Database.Path)
}

// LogPath resolves the log file location under the workdir.
func (c *AppConfig) LogPath() string {
	if filepath.IsAbs(c.Logger.Filename) {
		return c.Logger.Filename
	}
	return filepath.Join(c.System.Workdir, c.Logger.Filename)
}
