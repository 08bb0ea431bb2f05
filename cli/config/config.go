package config

import (
	"os"
	"path"

	"gopkg.in/yaml.v3"
)

func GetConfigLocation() (string, error) {

	homedir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return path.Join(homedir, ".config/minitar/config.yml"), nil
}

type Config struct {
	LogLevel   string `yaml:"log_level"`
	LogFormat  string `yaml:"log_format"`
	ExtractDir string `yaml:"extract_dir"`
	Valid      bool   `yaml:"-"`
	Location   string `yaml:"-"`
}

// Load reads the optional user config. A missing file is not an error: every
// option has a usable default.
func (config *Config) Load() error {

	loc, err := GetConfigLocation()
	if err != nil {
		return err
	}

	if _, err := os.Stat(loc); err != nil {
		return nil
	}

	file, err := os.Open(loc)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(config); err != nil {
		return err
	}

	config.Valid = true
	config.Location = loc

	return nil
}
