package model

import (
	"errors"
	"fmt"
	gomath "math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/bldgltf/pkg/math"
)

// Model file errors.
var (
	ErrUnknownReference = errors.New("unknown reference")
	ErrDuplicateName    = errors.New("duplicate name")
)

type objectFile struct {
	Name   string `yaml:"name"`
	Handle string `yaml:"handle"`
	Color  *Color `yaml:"color"`
}

type constructionFile struct {
	objectFile  `yaml:",inline"`
	AirBoundary bool `yaml:"air_boundary"`
}

type zoneFile struct {
	objectFile `yaml:",inline"`
	Multiplier int      `yaml:"multiplier"`
	AirLoops   []string `yaml:"air_loops"`
}

type storyFile struct {
	objectFile           `yaml:",inline"`
	NominalZ             *float64 `yaml:"nominal_z"`
	FloorToCeilingHeight *float64 `yaml:"floor_to_ceiling_height"`
}

type surfaceFile struct {
	objectFile          `yaml:",inline"`
	Type                string        `yaml:"type"`
	Construction        string        `yaml:"construction"`
	BoundaryCondition   string        `yaml:"boundary_condition"`
	BoundaryObject      string        `yaml:"boundary_object"`
	SunExposure         string        `yaml:"sun_exposure"`
	WindExposure        string        `yaml:"wind_exposure"`
	IlluminanceSetpoint *float64      `yaml:"illuminance_setpoint"`
	Vertices            [][3]float64  `yaml:"vertices"`
	SubSurfaces         []surfaceFile `yaml:"sub_surfaces"`
}

type spaceFile struct {
	objectFile         `yaml:",inline"`
	ThermalZone        string        `yaml:"thermal_zone"`
	SpaceType          string        `yaml:"space_type"`
	BuildingStory      string        `yaml:"building_story"`
	BuildingUnit       string        `yaml:"building_unit"`
	ConstructionSet    string        `yaml:"construction_set"`
	Origin             [3]float64    `yaml:"origin"`
	RelativeNorth      float64       `yaml:"direction_of_relative_north"`
	Surfaces           []surfaceFile `yaml:"surfaces"`
	InteriorPartitions []surfaceFile `yaml:"interior_partitions"`
}

type shadingGroupFile struct {
	objectFile    `yaml:",inline"`
	Type          string        `yaml:"type"`
	Space         string        `yaml:"space"`
	Origin        [3]float64    `yaml:"origin"`
	RelativeNorth float64       `yaml:"direction_of_relative_north"`
	Surfaces      []surfaceFile `yaml:"surfaces"`
}

type modelFile struct {
	NorthAxis        float64            `yaml:"north_axis"`
	Constructions    []constructionFile `yaml:"constructions"`
	ThermalZones     []zoneFile         `yaml:"thermal_zones"`
	SpaceTypes       []objectFile       `yaml:"space_types"`
	BuildingStories  []storyFile        `yaml:"building_stories"`
	BuildingUnits    []objectFile       `yaml:"building_units"`
	AirLoops         []objectFile       `yaml:"air_loops"`
	ConstructionSets []objectFile       `yaml:"construction_sets"`
	Spaces           []spaceFile        `yaml:"spaces"`
	ShadingGroups    []shadingGroupFile `yaml:"shading_groups"`
}

// LoadFile reads a YAML building description.
func LoadFile(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return m, nil
}

// Parse builds a model from YAML. References between objects are by name
// and must resolve.
func Parse(data []byte) (*Model, error) {
	var f modelFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	b := &builder{m: &Model{NorthAxis: f.NorthAxis}}
	if err := b.build(&f); err != nil {
		return nil, err
	}
	return b.m, nil
}

type builder struct {
	m             *Model
	constructions map[string]*Construction
	zones         map[string]*ThermalZone
	spaceTypes    map[string]*SpaceType
	stories       map[string]*BuildingStory
	units         map[string]*BuildingUnit
	airLoops      map[string]*AirLoopHVAC
	sets          map[string]*DefaultConstructionSet
	spaces        map[string]*Space
	surfaces      map[string]*Surface

	// boundary object names resolved after all surfaces exist, in file order
	pending []pendingBoundary
}

type pendingBoundary struct {
	surface *Surface
	name    string
}

func (b *builder) build(f *modelFile) error {
	var err error

	b.airLoops, b.m.AirLoops, err = index(f.AirLoops, func(o objectFile) (*AirLoopHVAC, error) {
		return identify(NewAirLoopHVAC(o.Name), o), nil
	})
	if err != nil {
		return err
	}

	b.constructions, b.m.Constructions, err = index(f.Constructions, func(o constructionFile) (*Construction, error) {
		c := identify(NewConstruction(o.Name), o.objectFile)
		c.AirBoundary = o.AirBoundary
		return c, nil
	})
	if err != nil {
		return err
	}

	b.zones, b.m.ThermalZones, err = index(f.ThermalZones, func(o zoneFile) (*ThermalZone, error) {
		z := identify(NewThermalZone(o.Name), o.objectFile)
		if o.Multiplier > 0 {
			z.Multiplier = o.Multiplier
		}
		for _, name := range o.AirLoops {
			loop, err := lookup(b.airLoops, "air loop", name)
			if err != nil {
				return nil, fmt.Errorf("thermal zone %q: %w", o.Name, err)
			}
			z.AirLoops = append(z.AirLoops, loop)
		}
		return z, nil
	})
	if err != nil {
		return err
	}

	b.spaceTypes, b.m.SpaceTypes, err = index(f.SpaceTypes, func(o objectFile) (*SpaceType, error) {
		return identify(NewSpaceType(o.Name), o), nil
	})
	if err != nil {
		return err
	}

	b.stories, b.m.Stories, err = index(f.BuildingStories, func(o storyFile) (*BuildingStory, error) {
		s := identify(NewBuildingStory(o.Name), o.objectFile)
		s.NominalZ = o.NominalZ
		s.FloorToCeilingHeight = o.FloorToCeilingHeight
		return s, nil
	})
	if err != nil {
		return err
	}

	b.units, b.m.Units, err = index(f.BuildingUnits, func(o objectFile) (*BuildingUnit, error) {
		return identify(NewBuildingUnit(o.Name), o), nil
	})
	if err != nil {
		return err
	}

	b.sets, b.m.ConstructionSets, err = index(f.ConstructionSets, func(o objectFile) (*DefaultConstructionSet, error) {
		return identify(NewDefaultConstructionSet(o.Name), o), nil
	})
	if err != nil {
		return err
	}

	b.surfaces = make(map[string]*Surface)

	b.spaces, b.m.Spaces, err = index(f.Spaces, b.space)
	if err != nil {
		return err
	}

	for _, g := range f.ShadingGroups {
		group, err := b.shadingGroup(g)
		if err != nil {
			return err
		}
		b.m.ShadingGroups = append(b.m.ShadingGroups, group)
	}

	for _, p := range b.pending {
		other, err := lookup(b.surfaces, "surface", p.name)
		if err != nil {
			return fmt.Errorf("surface %q boundary object: %w", p.surface.Name(), err)
		}
		p.surface.BoundaryObject = other
	}
	return nil
}

func (b *builder) space(o spaceFile) (*Space, error) {
	s := identify(NewSpace(o.Name), o.objectFile)
	s.Transform = placement(o.Origin, o.RelativeNorth)

	var err error
	if s.Zone, err = optional(b.zones, "thermal zone", o.ThermalZone); err != nil {
		return nil, fmt.Errorf("space %q: %w", o.Name, err)
	}
	if s.SpaceType, err = optional(b.spaceTypes, "space type", o.SpaceType); err != nil {
		return nil, fmt.Errorf("space %q: %w", o.Name, err)
	}
	if s.Story, err = optional(b.stories, "building story", o.BuildingStory); err != nil {
		return nil, fmt.Errorf("space %q: %w", o.Name, err)
	}
	if s.Unit, err = optional(b.units, "building unit", o.BuildingUnit); err != nil {
		return nil, fmt.Errorf("space %q: %w", o.Name, err)
	}
	if s.ConstructionSet, err = optional(b.sets, "construction set", o.ConstructionSet); err != nil {
		return nil, fmt.Errorf("space %q: %w", o.Name, err)
	}

	for _, sf := range o.Surfaces {
		surf, err := b.surface(sf)
		if err != nil {
			return nil, err
		}
		s.AddSurface(surf)
		for _, subf := range sf.SubSurfaces {
			sub, err := b.surface(subf)
			if err != nil {
				return nil, err
			}
			surf.AddSubSurface(sub)
		}
	}
	for _, pf := range o.InteriorPartitions {
		p, err := b.surface(pf)
		if err != nil {
			return nil, err
		}
		s.AddInteriorPartition(p)
	}
	return s, nil
}

func (b *builder) shadingGroup(o shadingGroupFile) (*ShadingSurfaceGroup, error) {
	g := identify(NewShadingSurfaceGroup(o.Name), o.objectFile)
	g.Transform = placement(o.Origin, o.RelativeNorth)

	switch o.Type {
	case "", ShadingBuilding:
		g.ShadingType = ShadingBuilding
	case ShadingSite:
		g.ShadingType = ShadingSite
	case ShadingSpace:
		g.ShadingType = ShadingSpace
		space, err := lookup(b.spaces, "space", o.Space)
		if err != nil {
			return nil, fmt.Errorf("shading group %q: %w", o.Name, err)
		}
		g.Space = space
	default:
		return nil, fmt.Errorf("shading group %q: unknown type %q", o.Name, o.Type)
	}

	for _, sf := range o.Surfaces {
		surf, err := b.surface(sf)
		if err != nil {
			return nil, err
		}
		g.AddSurface(surf)
	}
	return g, nil
}

// surface accepts any vertex count; short polygons are skipped at export.
func (b *builder) surface(o surfaceFile) (*Surface, error) {
	if _, ok := b.surfaces[o.Name]; ok {
		return nil, fmt.Errorf("surface %q: %w", o.Name, ErrDuplicateName)
	}

	verts := make([]math.Vec3, len(o.Vertices))
	for i, v := range o.Vertices {
		verts[i] = math.Vec3{X: v[0], Y: v[1], Z: v[2]}
	}

	s := identify(NewSurface(o.Name, o.Type, verts), o.objectFile)
	s.BoundaryCondition = o.BoundaryCondition
	s.SunExposure = o.SunExposure
	s.WindExposure = o.WindExposure
	s.IlluminanceSetpoint = o.IlluminanceSetpoint

	var err error
	if s.Construction, err = optional(b.constructions, "construction", o.Construction); err != nil {
		return nil, fmt.Errorf("surface %q: %w", o.Name, err)
	}
	if o.BoundaryObject != "" {
		b.pending = append(b.pending, pendingBoundary{surface: s, name: o.BoundaryObject})
	}

	b.surfaces[o.Name] = s
	return s, nil
}

// placement is the space transform: rotation about z by the negated
// relative north angle in degrees, then translation to origin.
func placement(origin [3]float64, relativeNorth float64) math.Mat4 {
	t := math.Translate(origin[0], origin[1], origin[2])
	if relativeNorth == 0 {
		return t
	}
	return t.Mul(math.RotateZ(-relativeNorth * gomath.Pi / 180))
}

type identifiable interface {
	SetHandle(string)
	SetColor(Color)
}

func identify[T identifiable](obj T, o objectFile) T {
	if o.Handle != "" {
		obj.SetHandle(o.Handle)
	}
	if o.Color != nil {
		obj.SetColor(*o.Color)
	}
	return obj
}

func index[F any, T interface{ Name() string }](in []F, build func(F) (T, error)) (map[string]T, []T, error) {
	byName := make(map[string]T, len(in))
	list := make([]T, 0, len(in))
	for _, f := range in {
		obj, err := build(f)
		if err != nil {
			return nil, nil, err
		}
		if _, ok := byName[obj.Name()]; ok {
			return nil, nil, fmt.Errorf("%s: %w", obj.Name(), ErrDuplicateName)
		}
		byName[obj.Name()] = obj
		list = append(list, obj)
	}
	return byName, list, nil
}

func lookup[T any](m map[string]T, kind, name string) (T, error) {
	v, ok := m[name]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s %q", ErrUnknownReference, kind, name)
	}
	return v, nil
}

func optional[T any](m map[string]T, kind, name string) (T, error) {
	if name == "" {
		var zero T
		return zero, nil
	}
	return lookup(m, kind, name)
}
