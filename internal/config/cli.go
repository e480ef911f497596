// Package config declares the command line, which doubles as the schema of
// the JSON/YAML/TOML config files Kong loads.
package config

import "github.com/Alia5/keylayer/internal/cmd"

// Log configures the process logger.
type Log struct {
	Level   string `help:"Log level: trace, debug, info, warn, error" default:"info" env:"KEYLAYER_LOG_LEVEL"`
	File    string `help:"Also write logs to this file" env:"KEYLAYER_LOG_FILE"`
	RawFile string `help:"Write raw HID reports to this file" env:"KEYLAYER_LOG_RAW_FILE"`
}

type CLI struct {
	Config string `help:"Config file (json, yaml or toml)" env:"KEYLAYER_CONFIG"`
	Log    Log    `embed:"" prefix:"log."`

	Run      cmd.Run           `cmd:"" help:"Type on a keymap from this terminal"`
	Simulate cmd.Simulate      `cmd:"" help:"Replay a key script against a keymap"`
	Keymap   cmd.KeymapCommand `cmd:"" help:"Inspect and convert keymaps"`
	Configs  cmd.ConfigCommand `cmd:"" name:"config" help:"Configuration helpers"`
}
