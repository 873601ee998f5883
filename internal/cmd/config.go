package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/Alia5/ps2cursor/internal/configpaths"

	"github.com/alecthomas/kong"
	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"
)

// LogFlags are the global logging flags.
type LogFlags struct {
	Level   string `help:"Log level" enum:"trace,debug,info,warn,error" default:"info" env:"PS2CURSOR_LOG_LEVEL"`
	File    string `help:"Also write logs to this file" env:"PS2CURSOR_LOG_FILE"`
	RawFile string `help:"Write a hex dump of every raw device report to this file" env:"PS2CURSOR_LOG_RAW_FILE"`
}

// ConfigCommand groups config-related subcommands.
type ConfigCommand struct {
	Init ConfigInit `cmd:"" help:"Generate a configuration template"`
}

// ConfigInit scaffolds a configuration file for a command.
type ConfigInit struct {
	Command string `arg:"" name:"command" help:"Command to generate config for" enum:"watch,devices"`
	Format  string `help:"Output format" enum:"json,yaml,yml,toml" default:"json"`
	Output  string `help:"Destination file path (defaults to <command>.<format> in the current directory)"`
	Force   bool   `help:"Overwrite if the file already exists"`
}

// Run generates the template from the parsed command model, so every key
// matches a flag kong knows. The global log flags are always included.
func (c *ConfigInit) Run(kctx *kong.Context) error {
	return c.Generate(kctx.Model)
}

// Generate writes the template for c.Command of app.
func (c *ConfigInit) Generate(app *kong.Application) error {
	format := normalizeFormat(c.Format)
	if format == "" {
		return fmt.Errorf("unsupported format: %s", c.Format)
	}

	var node *kong.Node
	for _, child := range app.Children {
		if child.Name == c.Command {
			node = child
			break
		}
	}
	if node == nil {
		return fmt.Errorf("unknown command %q", c.Command)
	}

	root := templateFor(format, node.Name, templateFlags(app.Flags), templateFlags(node.Flags))

	dest := c.Output
	if dest == "" {
		dest = c.Command + "." + format
	}

	if !c.Force {
		if _, err := os.Stat(dest); err == nil {
			return errors.New("destination exists; use --force to overwrite")
		}
	}
	if err := configpaths.EnsureDir(dest); err != nil {
		return err
	}

	data, err := marshalConfig(format, root)
	if err != nil {
		return fmt.Errorf("encode %s config: %w", format, err)
	}
	return os.WriteFile(dest, data, 0o644)
}

type templateFlag struct {
	name  string
	value any
}

// templateFlags returns the configurable flags with their typed defaults.
func templateFlags(flags []*kong.Flag) []templateFlag {
	out := make([]templateFlag, 0, len(flags))
	for _, f := range flags {
		if f.Hidden || f.Name == "help" || f.Name == "config" {
			continue
		}
		if v := defaultValueForType(f.Target.Type(), f.Default); v != nil {
			out = append(out, templateFlag{name: f.Name, value: v})
		}
	}
	return out
}

// templateFor lays the flags out the way each configuration loader resolves
// them:
//   - json: flag names with '_' for '-', '.' in global names nests a table
//   - yaml: global flags at the top, command flags in a table named after
//     the command, flag names verbatim
//   - toml: every flag at the top level under its verbatim name; the loader
//     rejects keys that are not flag names
func templateFor(format, command string, global, local []templateFlag) map[string]any {
	root := map[string]any{}
	switch format {
	case "json":
		for _, f := range append(global, local...) {
			setNested(root, strings.Split(strings.ReplaceAll(f.name, "-", "_"), "."), f.value)
		}
	case "yaml":
		for _, f := range global {
			root[f.name] = f.value
		}
		if len(local) > 0 {
			sub := map[string]any{}
			for _, f := range local {
				sub[f.name] = f.value
			}
			root[command] = sub
		}
	default:
		for _, f := range append(global, local...) {
			root[f.name] = f.value
		}
	}
	return root
}

func setNested(m map[string]any, path []string, v any) {
	for _, p := range path[:len(path)-1] {
		sub, ok := m[p].(map[string]any)
		if !ok {
			sub = map[string]any{}
			m[p] = sub
		}
		m = sub
	}
	m[path[len(path)-1]] = v
}

func marshalConfig(format string, root map[string]any) ([]byte, error) {
	switch format {
	case "yaml":
		return yaml.Marshal(root)
	case "toml":
		return toml.Marshal(root)
	default:
		return json.MarshalIndent(root, "", "  ")
	}
}

func normalizeFormat(f string) string {
	switch strings.ToLower(f) {
	case "json":
		return "json"
	case "yaml", "yml":
		return "yaml"
	case "toml":
		return "toml"
	default:
		return ""
	}
}

func defaultValueForType(t reflect.Type, def string) any {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.PkgPath() == "time" && t.Name() == "Duration" {
		if def != "" {
			return def
		}
		return "0s"
	}
	switch t.Kind() {
	case reflect.String:
		return def
	case reflect.Bool:
		b, err := strconv.ParseBool(def)
		if err != nil {
			return false
		}
		return b
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseInt(def, 10, 64)
		if err != nil {
			return int64(0)
		}
		return n
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(def, 64)
		if err != nil {
			return float64(0)
		}
		return f
	case reflect.Slice:
		if t.Elem().Kind() != reflect.String {
			return nil
		}
		items := []string{}
		for _, s := range strings.Split(def, ",") {
			if s = strings.TrimSpace(s); s != "" {
				items = append(items, s)
			}
		}
		return items
	default:
		return nil
	}
}
