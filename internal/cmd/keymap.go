package cmd

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Alia5/keylayer/internal/configpaths"
	"github.com/Alia5/keylayer/keycode"
	"github.com/Alia5/keylayer/keymap"
	"github.com/Alia5/keylayer/keymaps"
	"github.com/Alia5/keylayer/scan"
)

// KeymapCommand groups keymap subcommands.
type KeymapCommand struct {
	List     KeymapList     `cmd:"" help:"List builtin keymaps"`
	Validate KeymapValidate `cmd:"" help:"Check a keymap file and print its fingerprint"`
	Convert  KeymapConvert  `cmd:"" help:"Convert a keymap between json, yaml, toml and bin"`
	Show     KeymapShow     `cmd:"" help:"Print every layer of a keymap"`
	Schema   KeymapSchema   `cmd:"" help:"Print the JSON schema of keymap documents"`
}

// openKeymap resolves name as a builtin board, a file path, or a file in
// the user keymap directory, in that order. path is empty for builtins.
func openKeymap(name string) (board *keymaps.Board, path string, err error) {
	if b, ok := keymaps.Get(name); ok {
		return b, "", nil
	}
	candidates := []string{name}
	if !strings.ContainsRune(name, filepath.Separator) {
		if dir, err := configpaths.KeymapDir(); err == nil {
			candidates = append(candidates, filepath.Join(dir, name))
		}
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		t, m, err := keymap.Load(p)
		if err != nil {
			return nil, "", err
		}
		return &keymaps.Board{Name: t.Name(), Table: t, Macros: m}, p, nil
	}
	return nil, "", fmt.Errorf("keymap %q: no builtin or file with that name", name)
}

func stdout(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}

// KeymapList prints the builtin boards.
type KeymapList struct {
	Out io.Writer `kong:"-"`
}

func (c *KeymapList) Run() error {
	out := stdout(c.Out)
	for _, name := range keymaps.Names() {
		b, _ := keymaps.Get(name)
		fmt.Fprintf(out, "%-24s %dx%d, %d layers  %s\n", b.Name, b.Table.Rows(), b.Table.Cols(), b.Table.Layers(), b.Description)
	}
	return nil
}

// KeymapValidate loads a keymap and reports what it contains.
type KeymapValidate struct {
	Keymap string    `arg:"" help:"Keymap file or builtin name"`
	Out    io.Writer `kong:"-"`
}

func (c *KeymapValidate) Run(logger *slog.Logger) error {
	b, path, err := openKeymap(c.Keymap)
	if err != nil {
		return err
	}
	for _, err := range unresolvedMacros(b) {
		logger.Warn("macro key has no macro", "error", err)
	}
	fp := b.Table.Fingerprint()
	logger.Debug("keymap ok", "name", b.Name, "path", path)
	fmt.Fprintf(stdout(c.Out), "%s: %dx%d, %d layers, %d macros, fingerprint %s\n",
		b.Name, b.Table.Rows(), b.Table.Cols(), b.Table.Layers(), b.Macros.Len(), hex.EncodeToString(fp[:]))
	return nil
}

// unresolvedMacros reports every macro key whose id the board lacks.
func unresolvedMacros(b *keymaps.Board) []error {
	var errs []error
	t := b.Table
	for l := 0; l < t.Layers(); l++ {
		for r := 0; r < t.Rows(); r++ {
			for c := 0; c < t.Cols(); c++ {
				k := t.Lookup(l, r, c)
				if k.Kind != keycode.KindMacroTrigger {
					continue
				}
				if err := b.Macros.Require(k.Macro()); err != nil {
					errs = append(errs, fmt.Errorf("layer %d (%d,%d): %w", l, r, c, err))
				}
			}
		}
	}
	return errs
}

// KeymapConvert rewrites a keymap in the format of the output extension.
type KeymapConvert struct {
	Input  string `arg:"" help:"Keymap file or builtin name"`
	Output string `arg:"" help:"Destination; .json, .yaml, .toml or .bin"`
	Force  bool   `help:"Overwrite if the file already exists"`
}

func (c *KeymapConvert) Run(logger *slog.Logger) error {
	b, _, err := openKeymap(c.Input)
	if err != nil {
		return err
	}
	f, err := keymap.FormatFromPath(c.Output)
	if err != nil {
		return err
	}
	if !c.Force {
		if _, err := os.Stat(c.Output); err == nil {
			return errors.New("destination exists; use --force to overwrite")
		}
	}
	if f == keymap.FormatBinary && b.Macros.Len() > 0 {
		logger.Warn("binary images carry no macros", "dropped", b.Macros.Len())
	}
	if err := configpaths.EnsureDir(c.Output); err != nil {
		return err
	}
	if err := keymap.Save(c.Output, b.Table, b.Macros); err != nil {
		return err
	}
	logger.Info("keymap written", "name", b.Name, "path", c.Output, "format", f)
	return nil
}

// KeymapShow prints a keymap layer by layer.
type KeymapShow struct {
	Keymap string    `arg:"" help:"Keymap file or builtin name"`
	Layer  []string  `short:"l" help:"Only these layers, by name or index"`
	Width  int       `help:"Clip lines to this many columns (0 uses the terminal width)"`
	Out    io.Writer `kong:"-"`
}

func (c *KeymapShow) Run() error {
	b, _, err := openKeymap(c.Keymap)
	if err != nil {
		return err
	}
	t := b.Table

	layers, err := selectLayers(t, c.Layer)
	if err != nil {
		return err
	}
	width := c.Width
	if width <= 0 {
		width = 1 << 16
		if c.Out == nil {
			width = scan.Width(os.Stdout, 160)
		}
	}

	out := stdout(c.Out)
	fmt.Fprintf(out, "%s (%dx%d)\n", t.Name(), t.Rows(), t.Cols())
	for _, l := range layers {
		fmt.Fprintf(out, "\nlayer %d %s\n", l, t.LayerName(l))
		for _, line := range layerGrid(t, l) {
			if len(line) > width {
				line = line[:width]
			}
			fmt.Fprintln(out, strings.TrimRight(line, " "))
		}
	}
	return nil
}

func selectLayers(t *keymap.Table, want []string) ([]int, error) {
	if len(want) == 0 {
		all := make([]int, t.Layers())
		for i := range all {
			all[i] = i
		}
		return all, nil
	}
	out := make([]int, 0, len(want))
	for _, w := range want {
		if i, ok := t.LayerIndex(w); ok {
			out = append(out, i)
			continue
		}
		var i int
		if _, err := fmt.Sscanf(w, "%d", &i); err != nil || !t.Has(i) {
			return nil, fmt.Errorf("keymap %s has no layer %q", t.Name(), w)
		}
		out = append(out, i)
	}
	return out, nil
}

// layerGrid renders layer l with columns padded to their widest cell.
func layerGrid(t *keymap.Table, l int) []string {
	namer := func(layer uint8) string { return t.LayerName(int(layer)) }
	cells := make([][]string, t.Rows())
	widths := make([]int, t.Cols())
	for r := range cells {
		cells[r] = make([]string, t.Cols())
		for c := range cells[r] {
			k := t.Lookup(l, r, c)
			s := keycode.Format(k, namer)
			switch k.Kind {
			case keycode.KindTransparent:
				s = "___"
			case keycode.KindNoOp:
				s = "xxx"
			}
			cells[r][c] = s
			widths[c] = max(widths[c], len(s))
		}
	}
	lines := make([]string, len(cells))
	for r, row := range cells {
		var sb strings.Builder
		for c, s := range row {
			fmt.Fprintf(&sb, "%-*s ", widths[c], s)
		}
		lines[r] = sb.String()
	}
	return lines
}

// KeymapSchema prints the document schema.
type KeymapSchema struct {
	Out io.Writer `kong:"-"`
}

func (c *KeymapSchema) Run() error {
	_, err := stdout(c.Out).Write(keymap.SchemaJSON())
	return err
}
