package render

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taigrr/refract/pkg/scene"
)

// Stats summarizes a finished render.
type Stats struct {
	Pixels  int
	Rays    int64
	Elapsed time.Duration
}

// RaysPerSecond returns the ray throughput of the render.
func (s Stats) RaysPerSecond() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Rays) / s.Elapsed.Seconds()
}

// Renderer renders scenes with a fixed config.
type Renderer struct {
	cfg Config

	// OnRow, if set, is called after each finished row with the number of
	// rows done so far. It is called from worker goroutines.
	OnRow func(done, total int)
}

// NewRenderer validates cfg and returns a renderer for it.
func NewRenderer(cfg Config) (*Renderer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Renderer{cfg: cfg}, nil
}

// Config returns the renderer's config.
func (r *Renderer) Config() Config { return r.cfg }

// Render traces one primary ray per pixel of fb. Rows are rendered in
// parallel; each worker writes only its own rows. Cancelling ctx stops the
// render between rows and returns the context error with the pixels
// finished so far left in fb.
func (r *Renderer) Render(ctx context.Context, sc *scene.Scene, cam *Camera, fb *Framebuffer) (Stats, error) {
	if sc == nil || cam == nil || fb == nil {
		return Stats{}, errors.New("render: nil scene, camera or framebuffer")
	}
	if fb.Width <= 0 || fb.Height <= 0 {
		return Stats{}, fmt.Errorf("%w: framebuffer %dx%d", ErrInvalidConfig, fb.Width, fb.Height)
	}

	start := time.Now()
	tracer := NewTracer(sc, r.cfg)
	rays := cam.Rays(fb.Width, fb.Height)

	var done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.workers())

	for y := range fb.Height {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for x := range fb.Width {
				ray := rays.Ray(float64(x)+0.5, float64(y)+0.5)
				fb.Set(x, y, tracer.Trace(ray, 0, 1))
			}
			n := done.Add(1)
			if r.OnRow != nil {
				r.OnRow(int(n), fb.Height)
			}
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	stats := Stats{
		Pixels:  int(done.Load()) * fb.Width,
		Rays:    tracer.Rays(),
		Elapsed: time.Since(start),
	}
	if err != nil {
		return stats, fmt.Errorf("render: %w", err)
	}
	logger.Debug("render finished",
		"size", fmt.Sprintf("%dx%d", fb.Width, fb.Height),
		"rays", stats.Rays,
		"elapsed", stats.Elapsed,
	)
	return stats, nil
}
