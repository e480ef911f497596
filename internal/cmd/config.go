package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/Alia5/keylayer/internal/configpaths"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"
)

// ConfigCommand groups config-related subcommands.
type ConfigCommand struct {
	Init ConfigInit `cmd:"" help:"Write a config file holding a command's defaults"`
}

// configTemplates are the commands config init can scaffold.
var configTemplates = map[string]reflect.Type{
	"run":      reflect.TypeFor[Run](),
	"simulate": reflect.TypeFor[Simulate](),
}

// ConfigInit writes the flag defaults of a command as a config file.
type ConfigInit struct {
	Command string `arg:"" name:"command" help:"Command to generate config for" enum:"run,simulate"`
	Format  string `help:"Output format" enum:"json,yaml,toml" default:"json"`
	Output  string `help:"Destination file path (defaults to <command>.<format> in the current directory)"`
	Force   bool   `help:"Overwrite if the file already exists"`
}

// Run reflects over the command struct and its kong tags.
func (c *ConfigInit) Run() error {
	typ, ok := configTemplates[c.Command]
	if !ok {
		return fmt.Errorf("unknown command %q; expected run or simulate", c.Command)
	}
	format := strings.ToLower(c.Format)
	if format == "yml" {
		format = "yaml"
	}

	data, err := marshalConfig(format, configDefaults(typ))
	if err != nil {
		return err
	}

	dest := c.Output
	if dest == "" {
		dest = c.Command + "." + configpaths.Ext(format)
	}
	if _, err := os.Stat(dest); err == nil && !c.Force {
		return errors.New("destination exists; use --force to overwrite")
	}
	if err := configpaths.EnsureDir(dest); err != nil {
		return err
	}
	return os.WriteFile(dest, data, 0o644)
}

func marshalConfig(format string, root map[string]any) ([]byte, error) {
	switch format {
	case "json":
		b, err := json.MarshalIndent(root, "", "  ")
		return append(b, '\n'), err
	case "yaml":
		return yaml.Marshal(root)
	case "toml":
		return toml.Marshal(root)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// configDefaults maps each configurable field of t to its default. Embedded
// structs with a prefix become nested maps; positional arguments and fields
// hidden from kong are left out.
func configDefaults(t reflect.Type) map[string]any {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	out := make(map[string]any)
	for f := range fieldsOf(t) {
		if _, embedded := f.Tag.Lookup("embed"); embedded {
			sub := configDefaults(f.Type)
			if name := strings.TrimSuffix(f.Tag.Get("prefix"), "."); name != "" {
				out[name] = sub
				continue
			}
			for k, v := range sub {
				out[k] = v
			}
			continue
		}
		if v := defaultValue(f.Type, f.Tag.Get("default")); v != nil {
			out[lowerFirst(f.Name)] = v
		}
	}
	return out
}

func fieldsOf(t reflect.Type) func(func(reflect.StructField) bool) {
	return func(yield func(reflect.StructField) bool) {
		for i := range t.NumField() {
			f := t.Field(i)
			if !f.IsExported() || f.Tag.Get("kong") == "-" {
				continue
			}
			if _, positional := f.Tag.Lookup("arg"); positional {
				continue
			}
			if !yield(f) {
				return
			}
		}
	}
}

func lowerFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s
	}
	return string(unicode.ToLower(r)) + s[n:]
}

var durationType = reflect.TypeFor[time.Duration]()

// defaultValue parses a kong default tag into the value written to the
// config file; nil means the field has no config representation.
func defaultValue(t reflect.Type, def string) any {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == durationType {
		if def == "" {
			return "0s"
		}
		return def
	}
	switch t.Kind() {
	case reflect.String:
		return def
	case reflect.Bool:
		b, _ := strconv.ParseBool(def)
		return b
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, _ := strconv.ParseInt(def, 10, 64)
		return n
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, _ := strconv.ParseUint(def, 10, 64)
		return n
	case reflect.Float32, reflect.Float64:
		f, _ := strconv.ParseFloat(def, 64)
		return f
	case reflect.Struct:
		return configDefaults(t)
	default:
		return nil
	}
}
