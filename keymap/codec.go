package keymap

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Alia5/keylayer/macro"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"
)

// Format is a persisted keymap encoding.
type Format string

const (
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
	FormatTOML   Format = "toml"
	FormatBinary Format = "bin"
)

var ErrUnknownFormat = errors.New("unknown keymap format")

// ParseFormat normalises a format name ("yml" is YAML).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	case "bin", "klt":
		return FormatBinary, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// Decode parses data in format f into a Document. Text formats are checked
// against the document schema first.
func Decode(data []byte, f Format) (*Document, error) {
	if f == FormatBinary {
		t, err := UnmarshalImage("", data)
		if err != nil {
			return nil, err
		}
		return NewDocument(t, nil), nil
	}

	raw, err := decodeRaw(data, f)
	if err != nil {
		return nil, err
	}
	if err := ValidateSchema(raw); err != nil {
		return nil, err
	}

	var doc Document
	switch f {
	case FormatJSON:
		err = json.Unmarshal(data, &doc)
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	case FormatTOML:
		err = toml.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s keymap: %w", f, err)
	}
	return &doc, nil
}

// decodeRaw decodes data into plain maps and slices for schema validation.
func decodeRaw(data []byte, f Format) (any, error) {
	var raw any
	switch f {
	case FormatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode json keymap: %w", err)
		}
		return raw, nil
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode yaml keymap: %w", err)
		}
	case FormatTOML:
		tree, err := toml.LoadBytes(data)
		if err != nil {
			return nil, fmt.Errorf("decode toml keymap: %w", err)
		}
		raw = tree.ToMap()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	// Normalise to what encoding/json produces so the validator sees one
	// shape regardless of source format.
	j, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("normalise %s keymap: %w", f, err)
	}
	var norm any
	if err := json.Unmarshal(j, &norm); err != nil {
		return nil, err
	}
	return norm, nil
}

// Encode renders doc in format f.
func Encode(doc *Document, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		b, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatTOML:
		return toml.Marshal(*doc)
	case FormatBinary:
		t, _, err := doc.Build()
		if err != nil {
			return nil, err
		}
		return t.MarshalBinary()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

// Load reads and builds a keymap file; the format comes from the extension.
func Load(path string) (*Table, *macro.Table, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	doc, err := Decode(data, f)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	if doc.Name == "" {
		doc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	t, m, err := doc.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, m, nil
}

// Save writes t and macros to path in the format given by its extension.
func Save(path string, t *Table, macros *macro.Table) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := Encode(NewDocument(t, macros), f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
