package renderer

import (
	"fmt"
	"image"
	"image/color"

	"github.com/llgcode/draw2d/draw2dimg"
	"github.com/llgcode/draw2d/draw2dkit"

	"github.com/pthm-cable/scatter/camera"
	"github.com/pthm-cable/scatter/geom"
)

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// RenderImage rasterizes the same picture as WriteSVG.
func RenderImage(cam *camera.Camera, points []geom.Point, style Style) (*image.RGBA, error) {
	pal, err := style.palette()
	if err != nil {
		return nil, err
	}

	dest := image.NewRGBA(image.Rect(0, 0, int(cam.ViewportW), int(cam.ViewportH)))
	gc := draw2dimg.NewGraphicContext(dest)

	gc.SetFillColor(pal.background)
	draw2dkit.Rectangle(gc, 0, 0, cam.ViewportW, cam.ViewportH)
	gc.Fill()

	x0, z0 := cam.WorldToScreen(cam.Bounds.Min())
	x1, z1 := cam.WorldToScreen(cam.Bounds.Max())
	gc.SetStrokeColor(pal.domain)
	gc.SetLineWidth(1)
	gc.BeginPath()
	draw2dkit.Rectangle(gc, x0, z0, x1, z1)
	gc.Stroke()

	if style.Radius > 0 {
		ring := cam.Scale(style.Radius / 2)
		faded := pal.point
		faded.A = 0x5a
		gc.SetStrokeColor(faded)
		gc.SetLineWidth(0.5)
		for _, p := range points {
			if !cam.IsVisible(p, style.Radius) {
				continue
			}
			x, z := cam.WorldToScreen(p)
			gc.BeginPath()
			draw2dkit.Circle(gc, x, z, ring)
			gc.Stroke()
		}
	}

	gc.SetFillColor(pal.point)
	for _, p := range points {
		if !cam.IsVisible(p, 0) {
			continue
		}
		x, z := cam.WorldToScreen(p)
		gc.BeginPath()
		draw2dkit.Circle(gc, x, z, style.PointSize)
		gc.Fill()
	}

	return dest, nil
}

// WritePNG renders the points and saves the image to path.
func WritePNG(path string, cam *camera.Camera, points []geom.Point, style Style) error {
	img, err := RenderImage(cam, points, style)
	if err != nil {
		return err
	}
	if err := draw2dimg.SaveToPngFile(path, img); err != nil {
		return fmt.Errorf("writing png: %w", err)
	}
	return nil
}
