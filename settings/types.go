package settings

import (
	"callboard/dispatcher"
	"callboard/logger"
)

type (
	Config struct {
		Dispatcher dispatcher.Config `toml:"dispatcher" validate:"required"`
		Loop       LoopConfig        `toml:"loop" validate:"required"`
		Serial     SerialConfig      `toml:"serial"`
		Buttons    ButtonsConfig     `toml:"buttons"`
		Display    DisplayConfig     `toml:"display"`
		Buzzer     BuzzerConfig      `toml:"buzzer"`
		Journal    JournalConfig     `toml:"journal"`
		Metrics    MetricsConfig     `toml:"metrics"`
		Logging    logger.Config     `toml:"logging" validate:"required"`
	}

	LoopConfig struct {
		PollMs        int `toml:"pollMs" validate:"gte=1"`
		StatusSeconds int `toml:"statusSeconds" validate:"gte=0"`
		EdgeBuffer    int `toml:"edgeBuffer" validate:"gte=1"`
	}

	SerialConfig struct {
		// Device is a tty or fifo path; "-" reads stdin.
		Device string `toml:"device"`
	}

	ButtonsConfig struct {
		// Device carries '1'/'2' bytes standing in for the two button lines.
		// Empty disables the buttons.
		Device string `toml:"device"`
	}

	DisplayConfig struct {
		Columns int  `toml:"columns" validate:"gte=8"`
		Border  bool `toml:"border"`
		Buffer  int  `toml:"buffer" validate:"gte=1"`
	}

	BuzzerConfig struct {
		Enabled bool `toml:"enabled"`
	}

	JournalConfig struct {
		Enabled    bool   `toml:"enabled"`
		Path       string `toml:"path" validate:"required_if=Enabled true"`
		MergeHours int    `toml:"mergeHours" validate:"gte=0"`
	}

	MetricsConfig struct {
		// Listen is a host:port for /metrics. Empty disables the endpoint.
		Listen string `toml:"listen" validate:"omitempty,hostname_port"`
	}
)
