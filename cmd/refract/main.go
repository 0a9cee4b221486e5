// refract - Whitted-style ray tracer
// Render the built-in scenes or a glTF model to PNG, or explore them
// interactively in the terminal.
//
// Commands:
//
//	refract render   - Render a scene to a PNG file
//	refract preview  - Orbit a scene in the terminal
//	refract scenes   - List the built-in scenes
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/taigrr/refract/pkg/geom"
	"github.com/taigrr/refract/pkg/models"
	"github.com/taigrr/refract/pkg/render"
	"github.com/taigrr/refract/pkg/scene"
	"github.com/taigrr/refract/pkg/scenes"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "refract"})

func main() {
	if err := fang.Execute(context.Background(), rootCmd()); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:   "refract",
		Short: "A recursive ray tracer with CSG, reflections and refraction",
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return configureLogging(logLevel)
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	root.AddCommand(renderCmd(), previewCmd(), scenesCmd())
	return root
}

// configureLogging gives every package a logger at the requested level.
func configureLogging(level string) error {
	lvl, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	newLogger := func(prefix string) *log.Logger {
		return log.NewWithOptions(os.Stderr, log.Options{Prefix: prefix, Level: lvl})
	}
	logger = newLogger("refract")
	geom.SetLogger(newLogger("geom"))
	scene.SetLogger(newLogger("scene"))
	render.SetLogger(newLogger("render"))
	models.SetLogger(newLogger("models"))
	scenes.SetLogger(newLogger("scenes"))
	return nil
}

func scenesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenes",
		Short: "List the built-in scenes",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, name := range scenes.List() {
				fmt.Fprintf(cmd.OutOrStdout(), "  %-12s %s\n", name, scenes.Description(name))
			}
		},
	}
}
