package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"callboard/dispatcher"
	"callboard/logger"
)

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	return validate.Struct(c)
}

// Default returns the factory configuration.
func Default() Config {
	return Config{
		Dispatcher: dispatcher.DefaultConfig(),
		Loop: LoopConfig{
			PollMs:        100,
			StatusSeconds: 60,
			EdgeBuffer:    16,
		},
		Serial: SerialConfig{Device: "-"},
		Display: DisplayConfig{
			Columns: 16,
			Border:  true,
			Buffer:  4,
		},
		Buzzer: BuzzerConfig{Enabled: true},
		Journal: JournalConfig{
			Path:       "callboard.db",
			MergeHours: 24,
		},
		Logging: logger.Config{
			Level:  logger.LevelInfo,
			Format: "text",
		},
	}
}

// LoadConfig loads the configuration from configPath on top of the defaults,
// then any optional section files next to it.
// It returns a pointer to the Config struct or an error if loading fails.
func LoadConfig(configPath string) (*Config, error) {
	config := Default()

	// Check if main config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}

	// Get absolute path for better error messages
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		absPath = configPath // fallback to relative path
	}

	_, err = toml.DecodeFile(configPath, &config)
	if err != nil {
		return nil, fmt.Errorf("error parsing config file %s: %w", absPath, err)
	}

	if err := loadSectionConfigs(filepath.Dir(configPath), &config); err != nil {
		return nil, fmt.Errorf("error loading section configs: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// loadSectionConfigs overlays per-section files such as logging.toml so a
// site can override one section without editing the main file.
func loadSectionConfigs(dir string, config *Config) error {
	sectionConfigs := map[string]interface{}{
		"logging.toml": &config.Logging,
		"metrics.toml": &config.Metrics,
		"journal.toml": &config.Journal,
	}

	for name, configStruct := range sectionConfigs {
		configPath := filepath.Join(dir, name)
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			// This is not a fatal error, just a missing override
			continue
		}

		_, err := toml.DecodeFile(configPath, configStruct)
		if err != nil {
			return fmt.Errorf("error parsing section config file %s: %w", configPath, err)
		}
	}

	return nil
}

func (l LoopConfig) PollInterval() time.Duration {
	return time.Duration(l.PollMs) * time.Millisecond
}

func (l LoopConfig) StatusInterval() time.Duration {
	return time.Duration(l.StatusSeconds) * time.Second
}

func (j JournalConfig) MergeInterval() time.Duration {
	return time.Duration(j.MergeHours) * time.Hour
}
