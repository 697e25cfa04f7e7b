package material

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/Faultbox/bldgltf/pkg/model"
)

// Special palette entries.
const (
	Undefined = "Undefined"
	AirWall   = "AirWall"
)

// Variant suffixes for exterior and interior facing surfaces.
const (
	SuffixExterior = "_Ext"
	SuffixInterior = "_Int"
)

// Boundary material prefix.
const boundaryPrefix = "Boundary_"

type surfaceGroup struct {
	name        string
	color       model.Color
	doubleSided bool
}

var surfaceGroups = []surfaceGroup{
	{"NormalMaterial", model.RGB(255, 255, 255), false},
	{"Floor", model.RGB(128, 128, 128), false},
	{"Wall", model.RGB(204, 178, 102), false},
	{"RoofCeiling", model.RGB(153, 76, 76), false},
	{"Window", model.Color{R: 102, G: 178, B: 204, A: 153}, true},
	{"Skylight", model.Color{R: 102, G: 178, B: 204, A: 153}, true},
	{"Door", model.RGB(153, 133, 76), false},
	{"SiteShading", model.RGB(75, 124, 149), true},
	{"BuildingShading", model.RGB(113, 76, 153), true},
	{"SpaceShading", model.RGB(76, 110, 178), true},
	{"InteriorPartitionSurface", model.RGB(158, 188, 143), true},
}

var boundaryColors = []struct {
	name  string
	color model.Color
}{
	{"Surface", model.RGB(0, 153, 0)},
	{"Adiabatic", model.RGB(255, 101, 178)},
	{"Space", model.RGB(255, 0, 0)},
	{"Outdoors", model.RGB(163, 204, 204)},
	{"Outdoors_Sun", model.RGB(40, 204, 204)},
	{"Outdoors_Wind", model.RGB(9, 159, 162)},
	{"Outdoors_SunWind", model.RGB(68, 119, 161)},
	{"Ground", model.RGB(204, 183, 122)},
	{"Foundation", model.RGB(117, 30, 122)},
	{"OtherSideCoefficients", model.RGB(63, 63, 63)},
	{"OtherSideConditionsModel", model.RGB(153, 0, 76)},
	{"GroundFCfactorMethod", model.RGB(153, 122, 30)},
	{"GroundSlabPreprocessorAverage", model.RGB(255, 191, 0)},
	{"GroundSlabPreprocessorCore", model.RGB(255, 182, 50)},
	{"GroundSlabPreprocessorPerimeter", model.RGB(255, 178, 101)},
	{"GroundBasementPreprocessorAverageWall", model.RGB(204, 51, 0)},
	{"GroundBasementPreprocessorAverageFloor", model.RGB(204, 81, 40)},
	{"GroundBasementPreprocessorUpperWall", model.RGB(204, 112, 81)},
	{"GroundBasementPreprocessorLowerWall", model.RGB(204, 173, 163)},
	{"Shading", model.RGB(108, 108, 108)},
	{"InteriorPartition", model.RGB(158, 188, 143)},
}

// interior variants are the base color washed halfway to white
func interiorColor(c model.Color) model.Color {
	white := colorful.Color{R: 1, G: 1, B: 1}
	return model.FromColorful(c.Colorful().BlendRgb(white, 0.5), c.A)
}

// Palette returns the fixed materials in catalog order, Undefined first.
func Palette() []Material {
	out := []Material{{Name: Undefined, Color: model.RGB(255, 255, 255)}}

	for _, g := range surfaceGroups {
		out = append(out,
			Material{Name: g.name, Color: g.color, DoubleSided: g.doubleSided},
			Material{Name: g.name + SuffixExterior, Color: g.color, DoubleSided: g.doubleSided},
			Material{Name: g.name + SuffixInterior, Color: interiorColor(g.color), DoubleSided: g.doubleSided},
		)
	}

	out = append(out, Material{Name: AirWall, Color: model.Color{R: 102, G: 178, B: 204, A: 153}, DoubleSided: true})

	for _, b := range boundaryColors {
		out = append(out, Material{Name: boundaryPrefix + b.name, Color: b.color})
	}
	return out
}
