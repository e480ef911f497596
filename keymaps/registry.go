// Package keymaps registers the builtin board keymaps by name.
package keymaps

import (
	"sort"
	"strings"
	"sync"

	"github.com/Alia5/keylayer/keymap"
	"github.com/Alia5/keylayer/macro"
)

// Board is a builtin keymap with its macros and indicator wiring.
type Board struct {
	Name        string
	Description string
	Table       *keymap.Table
	Macros      *macro.Table
	// Indicators names the LED lit for each layer, by layer index.
	Indicators map[int]string
}

var (
	boards   = make(map[string]*Board)
	boardsMu sync.RWMutex
)

// Register adds a board. Names are case-insensitive; a later registration
// replaces an earlier one.
func Register(b *Board) {
	boardsMu.Lock()
	defer boardsMu.Unlock()
	boards[strings.ToLower(b.Name)] = b
}

// Get returns a registered board by name.
func Get(name string) (*Board, bool) {
	boardsMu.RLock()
	defer boardsMu.RUnlock()
	b, ok := boards[strings.ToLower(name)]
	return b, ok
}

// Names lists registered boards in sorted order.
func Names() []string {
	boardsMu.RLock()
	defer boardsMu.RUnlock()
	names := make([]string, 0, len(boards))
	for _, b := range boards {
		names = append(names, b.Name)
	}
	sort.Strings(names)
	return names
}
