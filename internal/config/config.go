// Package config defines the kong command line of ps2cursor.
package config

import (
	"github.com/Alia5/ps2cursor/internal/cmd"
)

// CLI is the root of the command tree. Values come from flags, env vars and
// the JSON/YAML/TOML files found by configpaths, in that priority.
type CLI struct {
	ConfigFile string       `name:"config" help:"Configuration file (json, yaml or toml)" type:"path" env:"PS2CURSOR_CONFIG"`
	Log        cmd.LogFlags `embed:"" prefix:"log."`

	Watch   cmd.Watch         `cmd:"" default:"withargs" help:"Poll the mouse device and print the cursor every frame"`
	Devices cmd.Devices       `cmd:"" help:"List mouse devices known to udev"`
	Config  cmd.ConfigCommand `cmd:"" help:"Configuration helpers"`
}
