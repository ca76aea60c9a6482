// Package renderer draws previews of sampled point sets.
package renderer

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/pthm-cable/scatter/config"
)

// Style controls how a point set is drawn.
type Style struct {
	PointSize   float64 // dot radius in pixels
	Radius      float64 // disc radius in world units, 0 hides the rings
	Background  string  // hex colors
	PointColor  string
	DomainColor string
}

// StyleFromConfig builds a style from the preview settings. The rings are
// only drawn when enabled and the strategy has a disc radius.
func StyleFromConfig(p config.PreviewConfig, radius float64) Style {
	s := Style{
		PointSize:   p.PointSize,
		Background:  p.Background,
		PointColor:  p.PointColor,
		DomainColor: p.DomainColor,
	}
	if p.ShowRadius {
		s.Radius = radius
	}
	return s
}

// ParseHex parses #rgb or #rrggbb into an opaque color.
func ParseHex(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

type palette struct {
	background, point, domain color.RGBA
}

func (s Style) palette() (palette, error) {
	var p palette
	var err error
	if p.background, err = ParseHex(s.Background); err != nil {
		return p, err
	}
	if p.point, err = ParseHex(s.PointColor); err != nil {
		return p, err
	}
	if p.domain, err = ParseHex(s.DomainColor); err != nil {
		return p, err
	}
	return p, nil
}
