package main

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/taigrr/refract/pkg/render"
	"github.com/taigrr/refract/pkg/scenes"
	"github.com/taigrr/refract/pkg/shade"
)

type renderFlags struct {
	scene         string
	out           string
	width         int
	height        int
	depth         int
	minAtten      float64
	workers       int
	noShadows     bool
	noReflections bool
	noRefractions bool
	bg            string
	ortho         bool
	orthoHeight   float64
	fov           float64
	bounds        bool
	mesh          string
}

// bind registers the flags shared by render and preview.
func (f *renderFlags) bind(cmd *cobra.Command, defaultDepth int) {
	fl := cmd.Flags()
	fl.StringVarP(&f.scene, "scene", "s", "spheres", "Scene to render (see `refract scenes`)")
	fl.IntVar(&f.depth, "depth", defaultDepth, "Maximum reflection/refraction depth")
	fl.Float64Var(&f.minAtten, "min-attenuation", 0.01, "Stop recursion below this ray energy")
	fl.IntVar(&f.workers, "workers", 0, "Rows rendered in parallel (0 = one per CPU)")
	fl.BoolVar(&f.noShadows, "no-shadows", false, "Disable shadow rays")
	fl.BoolVar(&f.noReflections, "no-reflections", false, "Disable reflection rays")
	fl.BoolVar(&f.noRefractions, "no-refractions", false, "Disable refraction rays")
	fl.StringVar(&f.bg, "bg", "", "Background color override (#rrggbb)")
	fl.BoolVar(&f.ortho, "ortho", false, "Use an orthographic camera")
	fl.Float64Var(&f.orthoHeight, "ortho-height", 6, "View-plane height of the orthographic camera")
	fl.Float64Var(&f.fov, "fov", 0, "Vertical field of view in degrees (0 = scene default)")
	fl.BoolVar(&f.bounds, "bounds", false, "Overlay shape bounding boxes")
	fl.StringVar(&f.mesh, "mesh", "", "glTF/GLB file for the mesh scene")
}

// config builds a render config from the flags.
func (f *renderFlags) config() (render.Config, error) {
	cfg := render.DefaultConfig()
	cfg.Width, cfg.Height = f.width, f.height
	cfg.MaxDepth = f.depth
	cfg.MinAttenuation = f.minAtten
	cfg.Workers = f.workers
	cfg.Shadows = !f.noShadows
	cfg.Reflections = !f.noReflections
	cfg.Refractions = !f.noRefractions
	if f.bg != "" {
		bg, err := shade.ParseHex(f.bg)
		if err != nil {
			return cfg, fmt.Errorf("--bg: %w", err)
		}
		cfg.Background = &bg
	}
	return cfg, nil
}

// camera applies the projection flags to a scene camera.
func (f *renderFlags) camera(cam *render.Camera) {
	if f.fov > 0 {
		cam.SetFOV(f.fov * math.Pi / 180)
	}
	if f.ortho {
		cam.SetOrthographic(f.orthoHeight)
	}
}

func renderCmd() *cobra.Command {
	f := &renderFlags{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a scene to a PNG file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if f.out == "" {
				f.out = f.scene + ".png"
			}
			if ext := strings.ToLower(filepath.Ext(f.out)); ext != ".png" {
				return fmt.Errorf("unsupported output format %q (use .png)", ext)
			}

			cfg, err := f.config()
			if err != nil {
				return err
			}
			r, err := render.NewRenderer(cfg)
			if err != nil {
				return err
			}

			sc, cam, err := scenes.Build(f.scene, scenes.Options{MeshPath: f.mesh})
			if err != nil {
				return err
			}
			f.camera(cam)

			step := max(cfg.Height/10, 1)
			r.OnRow = func(done, total int) {
				if done%step == 0 || done == total {
					logger.Debug("progress", "rows", done, "of", total)
				}
			}

			fb := render.NewFramebuffer(cfg.Width, cfg.Height)
			logger.Info("rendering", "scene", f.scene, "size", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
				"depth", cfg.MaxDepth, "projection", cam.Projection)
			stats, err := r.Render(cmd.Context(), sc, cam, fb)
			if err != nil {
				return err
			}

			if f.bounds {
				n := render.NewWireframe(cam, fb).DrawScene(sc)
				logger.Debug("drew bounds", "boxes", n)
			}

			if err := fb.SavePNG(f.out); err != nil {
				return err
			}
			logger.Info("done", "out", f.out, "elapsed", stats.Elapsed.Round(time.Millisecond),
				"rays", stats.Rays, "rays/s", fmt.Sprintf("%.0f", stats.RaysPerSecond()))
			return nil
		},
	}

	f.bind(cmd, 5)
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "Output PNG path (default <scene>.png)")
	cmd.Flags().IntVar(&f.width, "width", 800, "Image width in pixels")
	cmd.Flags().IntVar(&f.height, "height", 600, "Image height in pixels")
	return cmd
}
