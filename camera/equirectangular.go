package camera

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/cameramodels/utils"
)

const twoPi = 2 * math.Pi

// equirectangularModel maps longitude (the angle about +Y, zero on the optical axis) linearly onto
// the image columns and latitude (positive towards +Y) onto the rows. Its parameters are the
// pixel widths of the full 360 and 180 degree spans. It does not depend on depth.
type equirectangularModel struct{}

func (m *equirectangularModel) isModel() {}

func (m *equirectangularModel) ID() ModelID {
	return Equirectangular
}

func (m *equirectangularModel) Name() string {
	return "EQUIRECTANGULAR"
}

func (m *equirectangularModel) NumParams() int {
	return 2
}

func (m *equirectangularModel) ParamNames() []string {
	return []string{"width_scale", "height_scale"}
}

func (m *equirectangularModel) CheckParams(params []float64) error {
	return checkArity(m, params)
}

func sphericalAngles(p r3.Vector) (lon, lat float64) {
	return math.Atan2(p.X, p.Z), math.Atan2(p.Y, math.Hypot(p.X, p.Z))
}

func (m *equirectangularModel) Project(params []float64, p r3.Vector) r2.Point {
	lon, lat := sphericalAngles(p)
	return r2.Point{
		X: params[0] * (lon/twoPi + 0.5),
		Y: params[1] * (lat/math.Pi + 0.5),
	}
}

func (m *equirectangularModel) ProjectWithJacobian(params []float64, p r3.Vector, jacPoint, jacParams *mat.Dense) r2.Point {
	if s := angularScale(p); s != 1 {
		px := m.ProjectWithJacobian(params, p.Mul(1/s), jacPoint, jacParams)
		if jacPoint != nil {
			jacPoint.Scale(1/s, jacPoint)
		}
		return px
	}
	lon, lat := sphericalAngles(p)
	u := lon/twoPi + 0.5
	v := lat/math.Pi + 0.5
	if jacPoint != nil {
		h := math.Hypot(p.X, p.Z)
		hP := math.Max(h, utils.Epsilon)
		h2 := hP * hP
		n2 := math.Max(h*h+p.Y*p.Y, utils.Epsilon*utils.Epsilon)
		su := params[0] / twoPi
		sv := params[1] / math.Pi
		jacPoint.Set(0, 0, su*p.Z/h2)
		jacPoint.Set(0, 1, 0)
		jacPoint.Set(0, 2, -su*p.X/h2)
		jacPoint.Set(1, 0, -sv*p.Y*p.X/(hP*n2))
		jacPoint.Set(1, 1, sv*h/n2)
		jacPoint.Set(1, 2, -sv*p.Y*p.Z/(hP*n2))
	}
	if jacParams != nil {
		jacParams.Zero()
		jacParams.Set(0, 0, u)
		jacParams.Set(1, 1, v)
	}
	return r2.Point{X: params[0] * u, Y: params[1] * v}
}

func (m *equirectangularModel) Unproject(params []float64, px r2.Point) r3.Vector {
	lon := (px.X/utils.SafeDivisor(params[0]) - 0.5) * twoPi
	lat := (px.Y/utils.SafeDivisor(params[1]) - 0.5) * math.Pi
	cosLat := math.Cos(lat)
	return r3.Vector{
		X: cosLat * math.Sin(lon),
		Y: math.Sin(lat),
		Z: cosLat * math.Cos(lon),
	}
}

// Focal is always 1: a spherical projection has no focal length, but callers expect every model
// to report one.
func (m *equirectangularModel) Focal(params []float64) float64 {
	return 1.0
}

func (m *equirectangularModel) PrincipalPoint(params []float64) r2.Point {
	return r2.Point{X: params[0] / 2, Y: params[1] / 2}
}

func (m *equirectangularModel) CameraMatrix(params []float64) (*mat.Dense, error) {
	return nil, errors.Wrapf(errNoCameraMatrix, "model %s", m.Name())
}
