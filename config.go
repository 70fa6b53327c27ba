package shapefix

import (
	"log/slog"
	"math"
	"sync/atomic"
)

const (
	DefaultMaxErrors = 100
	DefaultThreshold = 100
)

// NeverOptimize as Threshold keeps every adaptive check interpreted.
const NeverOptimize int64 = math.MaxInt64

// Observer receives runtime events. Implementations must be safe for
// concurrent use.
type Observer interface {
	// Specialized fires once per adaptive check when its plan is installed.
	Specialized(kind string)
	// Finished fires after each top-level call with the number of errors
	// reported (0 or 1 for assert and is).
	Finished(op string, errors int)
}

// Config tunes a Validator.
type Config struct {
	// MaxErrors caps the errors Fix and Validate return; later violations are
	// still repaired. Values <= 0 mean DefaultMaxErrors.
	MaxErrors int `json:"maxErrors" yaml:"maxErrors"`
	// Threshold is the number of interpreted calls an adaptive check performs
	// before building its specialized plan. 0 specializes on first use.
	Threshold int64 `json:"threshold" yaml:"threshold"`
	// Logger receives debug records; nil is silent.
	Logger *slog.Logger `json:"-" yaml:"-"`
	// Observer receives specialization and call events; nil disables them.
	Observer Observer `json:"-" yaml:"-"`
}

// DefaultConfig returns {MaxErrors: 100, Threshold: 100}.
func DefaultConfig() Config {
	return Config{MaxErrors: DefaultMaxErrors, Threshold: DefaultThreshold}
}

func (cfg Config) normalized() Config {
	if cfg.MaxErrors <= 0 {
		cfg.MaxErrors = DefaultMaxErrors
	}
	if cfg.Threshold < 0 {
		cfg.Threshold = 0
	}
	return cfg
}

func (cfg *Config) specialized(kind string, calls int64) {
	if cfg.Logger != nil {
		cfg.Logger.Debug("adaptive check specialized", "kind", kind, "calls", calls)
	}
	if cfg.Observer != nil {
		cfg.Observer.Specialized(kind)
	}
}

func (cfg *Config) finished(op string, errors int) {
	if cfg.Observer != nil {
		cfg.Observer.Finished(op, errors)
	}
}

var defaultValidator atomic.Pointer[Validator]

func init() { defaultValidator.Store(New(DefaultConfig())) }

// SetDefault replaces the configuration used by the package-level Fix,
// Validate, Assert and Is.
func SetDefault(cfg Config) { defaultValidator.Store(New(cfg)) }

// Default returns the validator behind the package-level functions.
func Default() *Validator { return defaultValidator.Load() }
