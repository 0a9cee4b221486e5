package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/harmonica"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/spf13/cobra"

	"github.com/taigrr/refract/pkg/math3d"
	"github.com/taigrr/refract/pkg/render"
	"github.com/taigrr/refract/pkg/scenes"
)

// Controls:
//
//	W/S or Up/Down     - Orbit pitch
//	A/D or Left/Right  - Orbit yaw
//	+/- or scroll      - Zoom
//	Space              - Random spin
//	R                  - Reset view
//	B                  - Toggle bounding boxes
//	Esc / ctrl+c       - Quit

// RotationAxis tracks position and velocity for one orbit axis. Velocity
// decays toward zero through a critically damped spring.
type RotationAxis struct {
	Position  float64
	Velocity  float64
	velSpring harmonica.Spring
	velAccel  float64 // spring velocity of Velocity itself
}

// NewRotationAxis creates an axis whose spring is stepped fps times per second.
func NewRotationAxis(fps int) RotationAxis {
	return RotationAxis{
		velSpring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

// Update applies velocity to position and decays velocity toward 0.
func (a *RotationAxis) Update() {
	a.Position += a.Velocity
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
}

// orbit is the preview camera state: yaw and pitch around a target.
type orbit struct {
	Yaw, Pitch RotationAxis
	Radius     float64
	Target     math3d.Vec3

	fps              int
	homeYaw, homePit float64
	homeRadius       float64
}

func newOrbit(fps int, cam *render.Camera, target math3d.Vec3) *orbit {
	offset := cam.Position.Sub(target)
	radius := offset.Len()
	o := &orbit{
		Target:     target,
		fps:        fps,
		homeRadius: radius,
	}
	if radius > 0 {
		o.homeYaw = math.Atan2(offset.X, offset.Z)
		o.homePit = math.Asin(offset.Y / radius)
	}
	o.Reset()
	return o
}

func (o *orbit) Reset() {
	o.Yaw = NewRotationAxis(o.fps)
	o.Pitch = NewRotationAxis(o.fps)
	o.Yaw.Position = o.homeYaw
	o.Pitch.Position = o.homePit
	o.Radius = o.homeRadius
}

func (o *orbit) Impulse(pitch, yaw float64) {
	o.Pitch.Velocity += pitch
	o.Yaw.Velocity += yaw
}

func (o *orbit) Zoom(delta float64) {
	o.Radius = math.Max(1, math.Min(50, o.Radius+delta))
}

// Update advances the springs and places the camera.
func (o *orbit) Update(cam *render.Camera) {
	o.Yaw.Update()
	o.Pitch.Update()
	const maxPitch = math.Pi/2 - 0.05
	o.Pitch.Position = math.Max(-maxPitch, math.Min(maxPitch, o.Pitch.Position))
	cam.Orbit(o.Target, o.Radius, o.Yaw.Position, o.Pitch.Position)
}

func previewCmd() *cobra.Command {
	f := &renderFlags{}
	var fps int

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Orbit a scene in the terminal",
		Long: "Ray traces the scene at terminal resolution every frame.\n\n" +
			"Controls: W/S/A/D orbit, +/- zoom, space spin, R reset, B bounds, Esc quit.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPreview(cmd.Context(), f, max(fps, 1))
		},
	}

	f.bind(cmd, 3)
	cmd.Flags().IntVar(&fps, "fps", 15, "Target frames per second")
	return cmd
}

func runPreview(ctx context.Context, f *renderFlags, fps int) error {
	sc, cam, err := scenes.Build(f.scene, scenes.Options{MeshPath: f.mesh})
	if err != nil {
		return err
	}
	f.camera(cam)

	term := uv.DefaultTerminal()
	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	// Half-block cells carry two pixels each.
	f.width, f.height = width, height*2
	cfg, err := f.config()
	if err != nil {
		return err
	}
	r, err := render.NewRenderer(cfg)
	if err != nil {
		return err
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	// Mouse button tracking with SGR coordinates, for scroll zoom.
	_, _ = term.WriteString("\x1b[?1000h\x1b[?1006h")

	defer func() {
		_, _ = term.WriteString("\x1b[?1000l\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		_ = term.Display()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = term.Shutdown(shutdownCtx)
	}()

	if err := term.Resize(width, height); err != nil {
		return fmt.Errorf("resize terminal: %w", err)
	}

	fb := render.NewFramebuffer(width, height*2)
	target := math3d.Zero3()
	if b := sc.Bounds(); !b.IsEmpty() {
		target = b.Center()
	}
	view := newOrbit(fps, cam, target)
	showBounds := f.bounds
	const spin = 0.08

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-term.Events():
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				width, height = ev.Width, ev.Height
				term.Erase()
				if err := term.Resize(width, height); err != nil {
					return fmt.Errorf("resize terminal: %w", err)
				}
				fb.Resize(width, height*2)

			case uv.KeyPressEvent:
				switch {
				case ev.MatchString("escape", "ctrl+c"):
					return nil
				case ev.MatchString("w", "up"):
					view.Impulse(spin, 0)
				case ev.MatchString("s", "down"):
					view.Impulse(-spin, 0)
				case ev.MatchString("a", "left"):
					view.Impulse(0, -spin)
				case ev.MatchString("d", "right"):
					view.Impulse(0, spin)
				case ev.MatchString("+", "="):
					view.Zoom(-0.5)
				case ev.MatchString("-", "_"):
					view.Zoom(0.5)
				case ev.MatchString("space"):
					view.Impulse((rand.Float64()-0.5)*0.2, (rand.Float64()-0.5)*0.6)
				case ev.MatchString("r"):
					view.Reset()
				case ev.MatchString("b"):
					showBounds = !showBounds
				}

			case uv.MouseWheelEvent:
				switch ev.Button {
				case uv.MouseWheelUp:
					view.Zoom(-0.5)
				case uv.MouseWheelDown:
					view.Zoom(0.5)
				}
			}

		case <-ticker.C:
			view.Update(cam)
			if _, err := r.Render(ctx, sc, cam, fb); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			}
			if showBounds {
				render.NewWireframe(cam, fb).DrawScene(sc)
			}
			fb.Draw(term, term.Bounds())
			if err := term.Display(); err != nil {
				return fmt.Errorf("display: %w", err)
			}
		}
	}
}
