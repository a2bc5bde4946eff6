// Package numerator declares document code generation.
// The PostgreSQL implementation lives in infrastructure/numerator.
package numerator

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Strategy selects how numbers are taken from the sequence.
type Strategy int

const (
	// StrategyStrict takes one number per statement. No gaps.
	StrategyStrict Strategy = iota

	// StrategyCached reserves RangeSize numbers at a time and hands them out
	// from memory. A restart skips the unused part of the range.
	StrategyCached
)

// Options tune a single GetNextNumber call.
type Options struct {
	Strategy Strategy
	// RangeSize applies to StrategyCached. Default 50.
	RangeSize int64
}

// DefaultOptions returns the strict strategy.
func DefaultOptions() *Options {
	return &Options{Strategy: StrategyStrict}
}

// Config describes the shape of generated codes.
type Config struct {
	Prefix      string // e.g. "ILC"
	IncludeYear bool
	PadWidth    int    // default 5
	ResetPeriod string // "year", "month" or "never"
}

// DefaultConfig yields PREFIX-YYYY-NNNNN codes restarting every year.
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:      prefix,
		IncludeYear: true,
		PadWidth:    5,
		ResetPeriod: "year",
	}
}

// Format renders num the way generated codes look.
func (c Config) Format(period time.Time, num int64) string {
	width := c.PadWidth
	if width <= 0 {
		width = 5
	}
	if c.IncludeYear {
		return fmt.Sprintf("%s-%d-%0*d", c.Prefix, period.Year(), width, num)
	}
	return fmt.Sprintf("%s-%0*d", c.Prefix, width, num)
}

// Generator hands out document codes.
type Generator interface {
	GetNextNumber(ctx context.Context, cfg Config, opts *Options, period time.Time) (string, error)
	// SetNextNumber moves a sequence, e.g. after importing existing documents.
	SetNextNumber(ctx context.Context, cfg Config, period time.Time, value int64) error
}

// Counter is an in-memory Generator with one sequence per prefix.
// Used by tests and by tools that run without a database.
type Counter struct {
	mu   sync.Mutex
	last map[string]int64

	// Calls records the config of every GetNextNumber call.
	Calls []Config
}

var _ Generator = (*Counter)(nil)

// GetNextNumber implements Generator.
func (c *Counter) GetNextNumber(_ context.Context, cfg Config, _ *Options, period time.Time) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		c.last = make(map[string]int64)
	}
	c.last[cfg.Prefix]++
	c.Calls = append(c.Calls, cfg)
	return cfg.Format(period, c.last[cfg.Prefix]), nil
}

// SetNextNumber implements Generator. The next call returns value.
func (c *Counter) SetNextNumber(_ context.Context, cfg Config, _ time.Time, value int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		c.last = make(map[string]int64)
	}
	c.last[cfg.Prefix] = value - 1
	return nil
}
