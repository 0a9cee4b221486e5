package render

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/taigrr/refract/pkg/shade"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid render config")

// Config controls the integrator and the image it produces.
type Config struct {
	Width  int
	Height int

	// MaxDepth bounds the number of reflection/refraction bounces.
	MaxDepth int
	// MinAttenuation stops recursion once a ray carries less energy.
	MinAttenuation float64

	Shadows     bool
	Reflections bool
	Refractions bool

	// Workers is the number of rows rendered concurrently. Zero means
	// one per CPU.
	Workers int

	// Background overrides the scene background when non-nil.
	Background *shade.Color
}

// DefaultConfig returns an 800x600 config with every effect enabled.
func DefaultConfig() Config {
	return Config{
		Width:          800,
		Height:         600,
		MaxDepth:       5,
		MinAttenuation: 0.01,
		Shadows:        true,
		Reflections:    true,
		Refractions:    true,
	}
}

// Validate checks the config for values the renderer cannot use.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: image size %dx%d", ErrInvalidConfig, c.Width, c.Height)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("%w: max depth %d", ErrInvalidConfig, c.MaxDepth)
	}
	if c.MinAttenuation < 0 || c.MinAttenuation >= 1 {
		return fmt.Errorf("%w: min attenuation %g outside [0,1)", ErrInvalidConfig, c.MinAttenuation)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: %d workers", ErrInvalidConfig, c.Workers)
	}
	return nil
}

func (c Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}
