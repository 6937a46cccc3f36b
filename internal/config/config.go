package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Config holds the persisted application settings.
type Config struct {
	Theme           string `json:"theme"`
	SubtitleService string `json:"subtitle_service"`
	CastDevice      string `json:"cast_device"`
}

func defaultConfig() *Config {
	return &Config{
		Theme: "dark",
	}
}

// Load reads the settings file, creating it with defaults on first
// run, then applies environment overrides. An optional .env file in
// the working directory is honored before the environment is read.
func Load() (*Config, error) {
	path, err := appPath()
	if err != nil {
		return nil, fmt.Errorf("Load: failed to access config path: %w", err)
	}

	return LoadFrom(path)
}

// LoadFrom reads the settings file at an explicit path. Split out of
// Load so tests can run against a temp dir.
func LoadFrom(path string) (*Config, error) {
	conf, err := readOrCreate(path)
	if err != nil {
		return nil, err
	}

	// A missing .env is the normal case.
	_ = godotenv.Load()

	if v := os.Getenv("PLAYDECK_THEME"); v != "" {
		conf.Theme = v
	}
	if v := os.Getenv("PLAYDECK_SUBTITLE_SERVICE"); v != "" {
		conf.SubtitleService = v
	}
	if v := os.Getenv("PLAYDECK_CAST_DEVICE"); v != "" {
		conf.CastDevice = v
	}

	return conf, nil
}

func readOrCreate(path string) (*Config, error) {
	cfgfile, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
				return nil, fmt.Errorf("readOrCreate: failed to create default path: %w", err)
			}

			conf := defaultConfig()
			b, err := json.Marshal(conf)
			if err != nil {
				return nil, fmt.Errorf("readOrCreate: failed to encode default config: %w", err)
			}

			if err := os.WriteFile(path, b, 0644); err != nil {
				return nil, fmt.Errorf("readOrCreate: failed to create default config: %w", err)
			}

			return conf, nil
		}

		return nil, fmt.Errorf("readOrCreate: failed to open config: %w", err)
	}
	defer cfgfile.Close()

	conf := defaultConfig()
	if err := json.NewDecoder(cfgfile).Decode(conf); err != nil {
		return nil, fmt.Errorf("readOrCreate: failed to decode config: %w", err)
	}

	return conf, nil
}

// Save writes the settings back to the default location.
func (c *Config) Save() error {
	path, err := appPath()
	if err != nil {
		return fmt.Errorf("Save: failed to access config path: %w", err)
	}

	return c.SaveTo(path)
}

// SaveTo writes the settings to an explicit path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("SaveTo: failed to create config path: %w", err)
	}

	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("SaveTo: failed to marshal json: %w", err)
	}

	if err := os.WriteFile(path, b, 0644); err != nil {
		return fmt.Errorf("SaveTo: failed to save config: %w", err)
	}

	return nil
}

func appPath() (string, error) {
	oscfg, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("appPath: failed to get user config dir: %w", err)
	}

	return filepath.Join(oscfg, "playdeck", "settings.json"), nil
}
