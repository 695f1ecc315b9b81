package camera

import (
	"fmt"

	"github.com/samber/lo"
)

// ModelID identifies a camera model. Identifiers are persisted alongside camera parameters
// and are never reassigned.
type ModelID int

// The set of camera models. The numbering is part of the serialized form of a camera.
const (
	SimplePinhole ModelID = iota
	Pinhole
	SimpleRadial
	Radial
	OpenCV
	OpenCVFisheye
	FullOpenCV
	Equirectangular
	FOV
	SimpleRadialFisheye
	RadialFisheye
	ThinPrismFisheye
)

var registry = [...]Model{
	SimplePinhole: &centralModel{
		id: SimplePinhole, name: "SIMPLE_PINHOLE",
		focal: singleFocal, lift: perspectiveLift, dist: distortion{kind: noDistortion},
	},
	Pinhole: &centralModel{
		id: Pinhole, name: "PINHOLE",
		focal: dualFocal, lift: perspectiveLift, dist: distortion{kind: noDistortion},
	},
	SimpleRadial: &centralModel{
		id: SimpleRadial, name: "SIMPLE_RADIAL",
		focal: singleFocal, lift: perspectiveLift, dist: distortion{kind: polynomialRadial, n: 1},
	},
	Radial: &centralModel{
		id: Radial, name: "RADIAL",
		focal: singleFocal, lift: perspectiveLift, dist: distortion{kind: polynomialRadial, n: 2},
	},
	OpenCV: &centralModel{
		id: OpenCV, name: "OPENCV",
		focal: dualFocal, lift: perspectiveLift, dist: distortion{kind: brownConrady},
	},
	OpenCVFisheye: &centralModel{
		id: OpenCVFisheye, name: "OPENCV_FISHEYE",
		focal: dualFocal, lift: equidistantLift, dist: distortion{kind: polynomialRadial, n: 4},
	},
	FullOpenCV: &centralModel{
		id: FullOpenCV, name: "FULL_OPENCV",
		focal: dualFocal, lift: perspectiveLift, dist: distortion{kind: rationalBrownConrady},
	},
	Equirectangular: &equirectangularModel{},
	FOV: &centralModel{
		id: FOV, name: "FOV",
		focal: dualFocal, lift: perspectiveLift, dist: distortion{kind: fieldOfView},
	},
	SimpleRadialFisheye: &centralModel{
		id: SimpleRadialFisheye, name: "SIMPLE_RADIAL_FISHEYE",
		focal: singleFocal, lift: equidistantLift, dist: distortion{kind: polynomialRadial, n: 1},
	},
	RadialFisheye: &centralModel{
		id: RadialFisheye, name: "RADIAL_FISHEYE",
		focal: singleFocal, lift: equidistantLift, dist: distortion{kind: polynomialRadial, n: 2},
	},
	ThinPrismFisheye: &centralModel{
		id: ThinPrismFisheye, name: "THIN_PRISM_FISHEYE",
		focal: dualFocal, lift: equidistantLift, dist: distortion{kind: thinPrism},
	},
}

var modelIDsByName = lo.SliceToMap(registry[:], func(m Model) (string, ModelID) {
	return m.Name(), m.ID()
})

// Lookup returns the model registered under id.
func Lookup(id ModelID) (Model, error) {
	if id < 0 || int(id) >= len(registry) {
		return nil, NewUnknownModelIDError(id)
	}
	return registry[id], nil
}

// LookupByName returns the model registered under the canonical name. Names are matched exactly.
func LookupByName(name string) (Model, error) {
	id, err := IDFor(name)
	if err != nil {
		return nil, err
	}
	return registry[id], nil
}

// NameFor returns the canonical name of the model with the given id.
func NameFor(id ModelID) (string, error) {
	m, err := Lookup(id)
	if err != nil {
		return "", err
	}
	return m.Name(), nil
}

// IDFor returns the identifier of the model with the given canonical name.
func IDFor(name string) (ModelID, error) {
	id, ok := modelIDsByName[name]
	if !ok {
		return -1, NewUnknownModelNameError(name)
	}
	return id, nil
}

// ArityFor returns the number of parameters the model with the given id requires.
func ArityFor(id ModelID) (int, error) {
	m, err := Lookup(id)
	if err != nil {
		return 0, err
	}
	return m.NumParams(), nil
}

// Models returns every registered model ordered by identifier.
func Models() []Model {
	return append([]Model(nil), registry[:]...)
}

// Names returns the canonical names of every registered model ordered by identifier.
func Names() []string {
	return lo.Map(registry[:], func(m Model, _ int) string {
		return m.Name()
	})
}

// String returns the canonical name of the model, or a placeholder for unknown identifiers.
func (id ModelID) String() string {
	name, err := NameFor(id)
	if err != nil {
		return fmt.Sprintf("UNKNOWN(%d)", int(id))
	}
	return name
}
