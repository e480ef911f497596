// Package indicator drives status LEDs from the active layer.
package indicator

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/Alia5/keylayer/internal/log"
)

// MaxLEDs is the number of LEDs a Panel can address.
const MaxLEDs = 8

// Panel maps layers to named LEDs. At most one LED is lit: the one bound to
// the topmost layer, none for unbound layers.
type Panel struct {
	leds    []string
	byLayer map[int]int
	state   uint8
	logger  *slog.Logger
	onSet   func(state uint8)
}

// New builds a panel from a layer -> LED name binding. LEDs are numbered in
// name order. onSet, if not nil, receives the LED bitmask after every change.
func New(bindings map[int]string, onSet func(state uint8), logger *slog.Logger) (*Panel, error) {
	names := make(map[string]struct{}, len(bindings))
	for _, n := range bindings {
		names[n] = struct{}{}
	}
	if len(names) > MaxLEDs {
		return nil, fmt.Errorf("indicator: %d LEDs, at most %d supported", len(names), MaxLEDs)
	}
	p := &Panel{
		byLayer: make(map[int]int, len(bindings)),
		logger:  log.OrDiscard(logger),
		onSet:   onSet,
	}
	for n := range names {
		p.leds = append(p.leds, n)
	}
	sort.Strings(p.leds)
	for l, n := range bindings {
		p.byLayer[l] = sort.SearchStrings(p.leds, n)
	}
	return p, nil
}

// Update is a layer.ChangeFunc: all LEDs off, then the LED bound to layer on.
func (p *Panel) Update(layer int) {
	var next uint8
	if i, ok := p.byLayer[layer]; ok {
		next = 1 << i
	}
	if next == p.state {
		return
	}
	p.state = next
	if p.logger.Enabled(context.Background(), slog.LevelDebug) {
		p.logger.Debug("indicator", "layer", layer, "leds", p.String())
	}
	if p.onSet != nil {
		p.onSet(next)
	}
}

// State returns the LED bitmask; bit i is LEDs()[i].
func (p *Panel) State() uint8 { return p.state }

// LEDs returns the LED names in bit order.
func (p *Panel) LEDs() []string { return append([]string(nil), p.leds...) }

// Lit reports whether the named LED is on.
func (p *Panel) Lit(name string) bool {
	for i, n := range p.leds {
		if n == name {
			return p.state&(1<<i) != 0
		}
	}
	return false
}

// String lists the lit LEDs, "off" when none.
func (p *Panel) String() string {
	var on []string
	for i, n := range p.leds {
		if p.state&(1<<i) != 0 {
			on = append(on, n)
		}
	}
	if len(on) == 0 {
		return "off"
	}
	return strings.Join(on, ",")
}
