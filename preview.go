package main

import (
	"fmt"
	"os"

	"github.com/pthm-cable/scatter/camera"
	"github.com/pthm-cable/scatter/geom"
	"github.com/pthm-cable/scatter/renderer"
)

func writeSVGFile(path string, cam *camera.Camera, points []geom.Point, style renderer.Style) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := renderer.WriteSVG(f, cam, points, style); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
