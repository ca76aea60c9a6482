package renderer

import (
	"bytes"
	"encoding/xml"
	"errors"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/scatter/camera"
	"github.com/pthm-cable/scatter/config"
	"github.com/pthm-cable/scatter/geom"
)

var testStyle = Style{
	PointSize:   3,
	Background:  "#000000",
	PointColor:  "#ff8000",
	DomainColor: "#fff",
}

func testPoints() []geom.Point {
	return []geom.Point{{X: 1, Z: 1}, {X: 5, Z: 5}, {X: 9, Z: 2}, {X: 2.5, Z: 7.5}}
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
		err  bool
	}{
		{"#ff8000", color.RGBA{R: 0xff, G: 0x80, A: 0xff}, false},
		{"0a0b0c", color.RGBA{R: 0x0a, G: 0x0b, B: 0x0c, A: 0xff}, false},
		{"#fff", color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, false},
		{"#12345", color.RGBA{}, true},
		{"#gggggg", color.RGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHex(tt.in)
			if tt.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func countCircles(t *testing.T, doc []byte) int {
	t.Helper()
	dec := xml.NewDecoder(bytes.NewReader(doc))
	circles := 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return circles
		}
		require.NoError(t, err)
		if el, ok := tok.(xml.StartElement); ok && el.Name.Local == "circle" {
			circles++
		}
	}
}

func TestWriteSVG(t *testing.T) {
	cam := camera.New(200, 200, geom.NewBounds(0, 10, 0, 10), 10)

	var buf bytes.Buffer
	require.NoError(t, WriteSVG(&buf, cam, testPoints(), testStyle))
	require.Equal(t, len(testPoints()), countCircles(t, buf.Bytes()))
	require.Contains(t, buf.String(), "#ff8000")

	withRings := testStyle
	withRings.Radius = 1
	buf.Reset()
	require.NoError(t, WriteSVG(&buf, cam, testPoints(), withRings))
	require.Equal(t, 2*len(testPoints()), countCircles(t, buf.Bytes()))
}

func TestWriteSVGCullsHiddenPoints(t *testing.T) {
	cam := camera.New(200, 200, geom.NewBounds(0, 10, 0, 10), 0)
	cam.ZoomBy(4)
	cam.LookAt(geom.Point{X: 1, Z: 1})

	var buf bytes.Buffer
	require.NoError(t, WriteSVG(&buf, cam, testPoints(), testStyle))
	require.Equal(t, 1, countCircles(t, buf.Bytes()))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteSVGErrors(t *testing.T) {
	cam := camera.New(100, 100, geom.NewBounds(0, 1, 0, 1), 0)

	require.Error(t, WriteSVG(failingWriter{}, cam, testPoints(), testStyle))

	bad := testStyle
	bad.PointColor = "orange"
	require.Error(t, WriteSVG(io.Discard, cam, testPoints(), bad))
}

func TestRenderImage(t *testing.T) {
	cam := camera.New(200, 200, geom.NewBounds(0, 10, 0, 10), 10)
	img, err := RenderImage(cam, testPoints(), testStyle)
	require.NoError(t, err)
	require.Equal(t, 200, img.Bounds().Dx())

	// Corner pixels are background
	require.Equal(t, color.RGBA{A: 0xff}, img.RGBAAt(1, 1))

	// Point centers carry the point color
	for _, p := range testPoints() {
		x, z := cam.WorldToScreen(p)
		c := img.RGBAAt(int(x), int(z))
		require.InDelta(t, 0xff, int(c.R), 8, "point %v", p)
		require.InDelta(t, 0x80, int(c.G), 8, "point %v", p)
		require.InDelta(t, 0x00, int(c.B), 8, "point %v", p)
	}
}

func TestWritePNG(t *testing.T) {
	cam := camera.New(120, 80, geom.NewBounds(-2, 2, 0, 3), 4)
	path := filepath.Join(t.TempDir(), "preview.png")

	require.NoError(t, WritePNG(path, cam, testPoints(), testStyle))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	require.Equal(t, 120, img.Bounds().Dx())
	require.Equal(t, 80, img.Bounds().Dy())
}

func TestStyleFromConfig(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	s := StyleFromConfig(cfg.Preview, 2)
	require.Zero(t, s.Radius)
	require.True(t, strings.HasPrefix(s.Background, "#"))

	cfg.Preview.ShowRadius = true
	require.Equal(t, 2.0, StyleFromConfig(cfg.Preview, 2).Radius)
}
