// Package render turns a scene into pixels. It generates camera rays,
// traces them recursively through the scene and writes the results into
// a Framebuffer that can be saved as PNG or drawn to the terminal.
package render

import (
	"os"

	"github.com/charmbracelet/log"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "render"})

// SetLogger replaces the package logger.
func SetLogger(l *log.Logger) {
	logger = l
}
