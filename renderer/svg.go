package renderer

import (
	"fmt"
	"io"

	svg "github.com/ajstarks/svgo/float"

	"github.com/pthm-cable/scatter/camera"
	"github.com/pthm-cable/scatter/geom"
)

// errWriter keeps the first write error, svgo does not report them.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) Write(p []byte) (int, error) {
	if ew.err != nil {
		return 0, ew.err
	}
	n, err := ew.w.Write(p)
	ew.err = err
	return n, err
}

// WriteSVG draws the domain outline and one circle per visible point.
func WriteSVG(w io.Writer, cam *camera.Camera, points []geom.Point, style Style) error {
	pal, err := style.palette()
	if err != nil {
		return err
	}

	ew := &errWriter{w: w}
	s := svg.New(ew)
	s.Start(cam.ViewportW, cam.ViewportH)
	s.Rect(0, 0, cam.ViewportW, cam.ViewportH, "fill:"+hex(pal.background))

	x0, z0 := cam.WorldToScreen(cam.Bounds.Min())
	x1, z1 := cam.WorldToScreen(cam.Bounds.Max())
	s.Rect(x0, z0, x1-x0, z1-z0, fmt.Sprintf("fill:none;stroke:%s;stroke-width:1", hex(pal.domain)))

	if style.Radius > 0 {
		// Discs of half the radius never overlap in a valid sample
		ring := cam.Scale(style.Radius / 2)
		s.Gstyle(fmt.Sprintf("fill:none;stroke:%s;stroke-opacity:0.35;stroke-width:0.5", hex(pal.point)))
		for _, p := range points {
			if !cam.IsVisible(p, style.Radius) {
				continue
			}
			x, z := cam.WorldToScreen(p)
			s.Circle(x, z, ring)
		}
		s.Gend()
	}

	s.Gstyle("fill:" + hex(pal.point))
	for _, p := range points {
		if !cam.IsVisible(p, 0) {
			continue
		}
		x, z := cam.WorldToScreen(p)
		s.Circle(x, z, style.PointSize)
	}
	s.Gend()
	s.End()

	if ew.err != nil {
		return fmt.Errorf("writing svg: %w", ew.err)
	}
	return nil
}
