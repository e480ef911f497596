package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/Alia5/keylayer/layer"
)

// Config holds the tap/hold timing and layer stack parameters.
type Config struct {
	TapTimeout     time.Duration `help:"Longest press of a tap/hold key that still counts as a tap" default:"200ms" env:"KEYLAYER_TAP_TIMEOUT" json:"tapTimeout" yaml:"tapTimeout" toml:"tapTimeout"`
	TapToggleCount int           `help:"Consecutive taps of a tap-toggle key that toggle its layer" default:"2" env:"KEYLAYER_TAP_TOGGLE_COUNT" json:"tapToggleCount" yaml:"tapToggleCount" toml:"tapToggleCount"`
	StackCapacity  int           `help:"Maximum number of active layers, base included" default:"32" env:"KEYLAYER_STACK_CAPACITY" json:"stackCapacity" yaml:"stackCapacity" toml:"stackCapacity"`
}

// ErrInvalidConfig is returned by Validate for out-of-range settings.
var ErrInvalidConfig = errors.New("invalid engine config")

// DefaultConfig returns the defaults also declared in the kong tags.
func DefaultConfig() Config {
	return Config{
		TapTimeout:     200 * time.Millisecond,
		TapToggleCount: 2,
		StackCapacity:  layer.MaxLayers,
	}
}

// Validate checks ranges. The tap timeout must fit the millisecond clock.
func (c Config) Validate() error {
	if c.TapTimeout < time.Millisecond || c.TapTimeout > time.Minute {
		return fmt.Errorf("%w: tap timeout %s not in [1ms, 1m]", ErrInvalidConfig, c.TapTimeout)
	}
	if c.TapToggleCount < 1 || c.TapToggleCount > 255 {
		return fmt.Errorf("%w: tap toggle count %d not in [1, 255]", ErrInvalidConfig, c.TapToggleCount)
	}
	if c.StackCapacity < 1 || c.StackCapacity > layer.MaxLayers {
		return fmt.Errorf("%w: stack capacity %d not in [1, %d]", ErrInvalidConfig, c.StackCapacity, layer.MaxLayers)
	}
	return nil
}

func (c Config) tapTimeoutMillis() uint32 {
	return uint32(c.TapTimeout / time.Millisecond)
}
