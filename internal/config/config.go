package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

type Config struct {
	LogPath       string `mapstructure:"log_path"`
	LogLevel      string `mapstructure:"log_level"`
	LogFormat     string `mapstructure:"log_format"`
	LogMaxSizeMB  int    `mapstructure:"log_max_size_mb"`
	LogMaxBackups int    `mapstructure:"log_max_backups"`

	AutoAcceptEula        bool `mapstructure:"auto_accept_eula"`
	IncludeOptional       bool `mapstructure:"include_optional"`
	ExcludeRebootRequired bool `mapstructure:"exclude_reboot_required"`

	RebootDelaySeconds   int `mapstructure:"reboot_delay_seconds"`
	RebootTimeoutSeconds int `mapstructure:"reboot_timeout_seconds"`

	MinDiskSpaceGB float64 `mapstructure:"min_disk_space_gb"`
}

func Default() *Config {
	return &Config{
		LogPath:              filepath.Join(logDir(), "winup.log"),
		LogLevel:             "info",
		LogFormat:            "line",
		LogMaxSizeMB:         10,
		LogMaxBackups:        3,
		RebootDelaySeconds:   60,
		RebootTimeoutSeconds: 300,
		MinDiskSpaceGB:       5,
	}
}

func Load(cfgFile string) (*Config, error) {
	cfg := Default()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("winup")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(configDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("WINUP")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func configDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("ProgramData"), "Winup")
	case "darwin":
		return "/Library/Application Support/Winup"
	default:
		return "/etc/winup"
	}
}

func logDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("ProgramData"), "Winup", "logs")
	case "darwin":
		return "/Library/Logs/Winup"
	default:
		return "/var/log/winup"
	}
}
