// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Marquee MarqueeConfig `toml:"marquee"`
	Motion  MotionConfig  `toml:"motion"`
	Log     LogConfig     `toml:"log"`
}

// MarqueeConfig maps engine tuning and content settings.
type MarqueeConfig struct {
	Velocity  *float64   `toml:"velocity"`
	Direction *bool      `toml:"direction"`
	Copies    *int       `toml:"copies"`
	Damping   *float64   `toml:"damping"`
	Stiffness *float64   `toml:"stiffness"`
	MapIn     *[]float64 `toml:"map-in"`
	MapOut    *[]float64 `toml:"map-out"`
	Clamp     *bool      `toml:"clamp"`
	Margin    *float64   `toml:"margin"`
	RowHeight *float64   `toml:"row-height"`
	Texts     *[]string  `toml:"texts"`
	TextsFile *string    `toml:"texts-file"`
	Content   *string    `toml:"content-file"`
}

// MotionConfig maps the reduced-motion preference.
type MotionConfig struct {
	Reduced *bool `toml:"reduced"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	File  *string `toml:"file"`
	Debug *bool   `toml:"debug"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

// ReducedMotion returns the reduced-motion preference. An unset key reads
// as false.
func (c FileConfig) ReducedMotion() bool {
	return c.Motion.Reduced != nil && *c.Motion.Reduced
}
