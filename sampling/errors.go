package sampling

import (
	"math"

	"github.com/aukilabs/go-tooling/pkg/errors"

	"github.com/pthm-cable/scatter/geom"
)

// Error types attached to the errors returned by the samplers. Callers
// match them with errors.IsType or errors.Type from go-tooling.
const (
	ErrTypeInvalidDomain      = "invalid_domain"
	ErrTypeInvalidRadius      = "invalid_radius"
	ErrTypeInvalidResolution  = "invalid_resolution"
	ErrTypeInvalidProbability = "invalid_probability"
	ErrTypeInvalidMaxLevels   = "invalid_max_levels"
	ErrTypeUnknownStrategy    = "unknown_strategy"
	ErrTypeCanceled           = "canceled"
)

func validateDomain(b geom.Bounds) error {
	finite := !math.IsInf(b.XMin, 0) && !math.IsInf(b.XMax, 0) &&
		!math.IsInf(b.ZMin, 0) && !math.IsInf(b.ZMax, 0)
	if b.Empty() || !finite {
		return errors.New("sampling domain is empty").
			WithType(ErrTypeInvalidDomain).
			WithTag("x_min", b.XMin).
			WithTag("x_max", b.XMax).
			WithTag("z_min", b.ZMin).
			WithTag("z_max", b.ZMax)
	}
	return nil
}

func validateRadius(radius float64) error {
	if !(radius > 0) || math.IsInf(radius, 0) {
		return errors.New("disc radius must be positive and finite").
			WithType(ErrTypeInvalidRadius).
			WithTag("radius", radius)
	}
	return nil
}

func newRadiusTooSmallError(radius float64, what string, count, limit float64) error {
	return errors.Newf("disc radius produces too many %s", what).
		WithType(ErrTypeInvalidRadius).
		WithTag("radius", radius).
		WithTag("count", count).
		WithTag("limit", limit)
}

func newCanceledError(err error) error {
	return errors.New("sampling canceled").
		WithType(ErrTypeCanceled).
		Wrap(err)
}
