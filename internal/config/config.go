// Package config loads the control-parameter record (§3 of the spec) from
// a YAML file with command-line flag overrides, the same two-layer shape
// the teacher's own command-line tools use (a config file plus pflag
// overrides), generalized from a line-oriented text config to YAML since
// our control parameters are a flat, typed record rather than the
// teacher's free-form directive language.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Params is the control-parameter record of spec.md §3.
type Params struct {
	UseFourAxis    bool   `yaml:"use_four_axis"`
	FourthAxisType string `yaml:"fourth_axis_type"` // one of "E", "A", "B", "C"
	UseMm          bool   `yaml:"use_mm"`

	CharSendDelayMs int     `yaml:"char_send_delay_ms"`
	WaitTime        float64 `yaml:"wait_time_sec"`

	FilterFileCommands bool `yaml:"filter_file_commands"`

	ReducePrecision   bool `yaml:"reduce_precision"`
	GrblLineBufferLen int  `yaml:"grbl_line_buffer_len"`

	ZRateLimit       bool    `yaml:"z_rate_limit"`
	ZRateLimitAmount float64 `yaml:"z_rate_limit_amount"`
	XYRateAmount     float64 `yaml:"xy_rate_amount"`

	UseZLevelingData bool    `yaml:"use_z_leveling_data"`
	ZLevelingOffset  float64 `yaml:"z_leveling_offset"`

	G0Feed float64 `yaml:"g0_feed"`
}

// Default returns the control parameters used when no file or flags
// override them.
func Default() Params {
	return Params{
		UseFourAxis:         false,
		FourthAxisType:      "E",
		UseMm:               true,
		CharSendDelayMs:     0,
		WaitTime:            5,
		FilterFileCommands:  true,
		ReducePrecision:     false,
		GrblLineBufferLen:   70,
		ZRateLimit:          false,
		ZRateLimitAmount:    300,
		XYRateAmount:        3000,
		UseZLevelingData:    true,
		ZLevelingOffset:     0,
		G0Feed:              300,
	}
}

// FourthAxisLetter returns the configured fourth-axis letter, or 0 when
// running in 3-axis mode.
func (p Params) FourthAxisLetter() byte {
	if !p.UseFourAxis || p.FourthAxisType == "" {
		return 0
	}
	letter := p.FourthAxisType[0]
	if letter >= 'a' && letter <= 'z' {
		letter -= 'a' - 'A'
	}
	return letter
}

// Load reads and merges a YAML file over the defaults. A missing path is
// not an error - the defaults are returned unchanged.
func Load(path string) (Params, error) {
	p := Default()
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return p, err
	}

	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, err
	}
	return p, nil
}
