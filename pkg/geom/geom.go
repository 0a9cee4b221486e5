// Package geom implements the shapes a scene is built from and their
// ray intersection routines.
//
// Every shape solves intersections in its own local space. Rays are mapped
// in through the shape's inverse transform, solved, and the resulting hits
// mapped back out. IntersectAll reports the entry/exit intervals a ray
// spends inside a shape, which is what the CSG combinators operate on.
package geom

import (
	"os"

	"github.com/charmbracelet/log"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "geom"})

// SetLogger replaces the package logger. It must be called before shapes
// are built.
func SetLogger(l *log.Logger) {
	logger = l
}
