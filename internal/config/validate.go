package config

import (
	"errors"
	"fmt"
	"strings"
)

// Presets is the ordered set of encoder speed presets accepted by the
// quality-controlled video encoder.
var Presets = []string{
	"ultrafast", "superfast", "veryfast", "faster", "fast",
	"medium", "slow", "slower", "veryslow", "placebo",
}

// Validate ensures the configuration is usable. Invalid values abort
// before any file is processed.
func (c *Config) Validate() error {
	if err := c.validateEncoding(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateEncoding() error {
	if c.Encoding.Scale <= 0 {
		return errors.New("encoding.scale must be a positive integer")
	}
	if c.Encoding.CRF < 0 || c.Encoding.CRF > 51 {
		return fmt.Errorf("encoding.crf must be between 0 and 51, got %d", c.Encoding.CRF)
	}
	if !ValidPreset(c.Encoding.Preset) {
		return fmt.Errorf("encoding.preset %q: expected one of %s", c.Encoding.Preset, strings.Join(Presets, ", "))
	}
	switch c.Encoding.ScaleMode {
	case "auto", "width", "height", "long", "short":
	default:
		return fmt.Errorf("encoding.scale_mode %q: expected auto, width, height, long, or short", c.Encoding.ScaleMode)
	}
	if err := validateAspect(c.Encoding.Aspect); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q: expected console or json", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q: expected debug, info, warn, or error", c.Logging.Level)
	}
	return nil
}

// ValidPreset reports whether value is an accepted encoder preset.
func ValidPreset(value string) bool {
	for _, preset := range Presets {
		if preset == value {
			return true
		}
	}
	return false
}

func validateAspect(value string) error {
	if value == "source" {
		return nil
	}
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return fmt.Errorf("encoding.aspect %q: expected \"source\" or W:H", value)
	}
	for _, part := range parts {
		for _, r := range part {
			if r < '0' || r > '9' {
				return fmt.Errorf("encoding.aspect %q: components must be positive integers", value)
			}
		}
		if part == "" || strings.TrimLeft(part, "0") == "" {
			return fmt.Errorf("encoding.aspect %q: components must be positive integers", value)
		}
	}
	return nil
}
