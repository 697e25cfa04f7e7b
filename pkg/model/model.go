// Package model is a minimal building object model: spaces with planar
// surfaces and their semantic owners (constructions, zones, space types,
// stories, units, air loops and construction sets).
package model

import (
	"strings"

	"github.com/google/uuid"

	"github.com/Faultbox/bldgltf/pkg/math"
)

// IDD object type names.
const (
	TypeConstruction            = "OS:Construction"
	TypeConstructionAirBoundary = "OS:Construction:AirBoundary"
	TypeThermalZone             = "OS:ThermalZone"
	TypeSpace                   = "OS:Space"
	TypeSpaceType               = "OS:SpaceType"
	TypeBuildingStory           = "OS:BuildingStory"
	TypeBuildingUnit            = "OS:BuildingUnit"
	TypeAirLoopHVAC             = "OS:AirLoopHVAC"
	TypeDefaultConstructionSet  = "OS:DefaultConstructionSet"
	TypeShadingSurfaceGroup     = "OS:ShadingSurfaceGroup"
	TypeSurface                 = "OS:Surface"
	TypeSubSurface              = "OS:SubSurface"
	TypeShadingSurface          = "OS:ShadingSurface"
	TypeInteriorPartition       = "OS:InteriorPartitionSurface"
)

// Owner is a model object that can own surfaces and carry a render color.
type Owner interface {
	Handle() string
	Name() string
	IddObjectType() string
	Color() (Color, bool)
	SetColor(Color)
}

// NewHandle returns a fresh object handle in {uuid} form.
func NewHandle() string {
	return "{" + uuid.NewString() + "}"
}

// Object holds the identity shared by all model objects.
type Object struct {
	handle string
	name   string
	color  *Color
}

func newObject(name string) Object {
	return Object{handle: NewHandle(), name: name}
}

// Handle returns the object handle.
func (o *Object) Handle() string { return o.handle }

// Name returns the object name.
func (o *Object) Name() string { return o.name }

// Color returns the render color, if one is assigned.
func (o *Object) Color() (Color, bool) {
	if o.color == nil {
		return Color{}, false
	}
	return *o.color, true
}

// SetColor assigns the render color.
func (o *Object) SetColor(c Color) {
	o.color = &c
}

// SetHandle replaces the generated handle.
func (o *Object) SetHandle(h string) {
	o.handle = h
}

// Construction is a layered construction assigned to surfaces.
type Construction struct {
	Object
	AirBoundary bool
}

// NewConstruction creates a construction.
func NewConstruction(name string) *Construction {
	return &Construction{Object: newObject(name)}
}

// IddObjectType implements Owner.
func (c *Construction) IddObjectType() string {
	if c.AirBoundary {
		return TypeConstructionAirBoundary
	}
	return TypeConstruction
}

// ThermalZone groups spaces for HVAC.
type ThermalZone struct {
	Object
	Multiplier int
	AirLoops   []*AirLoopHVAC
}

// NewThermalZone creates a zone with multiplier 1.
func NewThermalZone(name string) *ThermalZone {
	return &ThermalZone{Object: newObject(name), Multiplier: 1}
}

// IddObjectType implements Owner.
func (*ThermalZone) IddObjectType() string { return TypeThermalZone }

// SpaceType classifies spaces by use.
type SpaceType struct {
	Object
}

// NewSpaceType creates a space type.
func NewSpaceType(name string) *SpaceType {
	return &SpaceType{Object: newObject(name)}
}

// IddObjectType implements Owner.
func (*SpaceType) IddObjectType() string { return TypeSpaceType }

// BuildingStory is a floor level.
type BuildingStory struct {
	Object
	NominalZ             *float64
	FloorToCeilingHeight *float64
}

// NewBuildingStory creates a story.
func NewBuildingStory(name string) *BuildingStory {
	return &BuildingStory{Object: newObject(name)}
}

// IddObjectType implements Owner.
func (*BuildingStory) IddObjectType() string { return TypeBuildingStory }

// BuildingUnit is a dwelling or tenant unit.
type BuildingUnit struct {
	Object
}

// NewBuildingUnit creates a unit.
func NewBuildingUnit(name string) *BuildingUnit {
	return &BuildingUnit{Object: newObject(name)}
}

// IddObjectType implements Owner.
func (*BuildingUnit) IddObjectType() string { return TypeBuildingUnit }

// AirLoopHVAC is an air loop serving one or more zones.
type AirLoopHVAC struct {
	Object
}

// NewAirLoopHVAC creates an air loop.
func NewAirLoopHVAC(name string) *AirLoopHVAC {
	return &AirLoopHVAC{Object: newObject(name)}
}

// IddObjectType implements Owner.
func (*AirLoopHVAC) IddObjectType() string { return TypeAirLoopHVAC }

// DefaultConstructionSet is a set of default constructions.
type DefaultConstructionSet struct {
	Object
}

// NewDefaultConstructionSet creates a construction set.
func NewDefaultConstructionSet(name string) *DefaultConstructionSet {
	return &DefaultConstructionSet{Object: newObject(name)}
}

// IddObjectType implements Owner.
func (*DefaultConstructionSet) IddObjectType() string { return TypeDefaultConstructionSet }

// Space is a region of the building holding surfaces. Transform maps
// space coordinates to building coordinates.
type Space struct {
	Object
	Zone               *ThermalZone
	SpaceType          *SpaceType
	Story              *BuildingStory
	Unit               *BuildingUnit
	ConstructionSet    *DefaultConstructionSet
	Transform          math.Mat4
	Surfaces           []*Surface
	InteriorPartitions []*Surface
}

// NewSpace creates a space with an identity transform.
func NewSpace(name string) *Space {
	return &Space{Object: newObject(name), Transform: math.Identity()}
}

// IddObjectType implements Owner.
func (*Space) IddObjectType() string { return TypeSpace }

// AddSurface appends a surface to the space.
func (s *Space) AddSurface(surf *Surface) {
	surf.Kind = KindSurface
	surf.space = s
	s.Surfaces = append(s.Surfaces, surf)
}

// AddInteriorPartition appends an interior partition to the space.
func (s *Space) AddInteriorPartition(surf *Surface) {
	surf.Kind = KindInteriorPartition
	surf.SurfaceType = "InteriorPartitionSurface"
	surf.space = s
	s.InteriorPartitions = append(s.InteriorPartitions, surf)
}

// Shading group types.
const (
	ShadingSite     = "Site"
	ShadingBuilding = "Building"
	ShadingSpace    = "Space"
)

// ShadingSurfaceGroup holds shading surfaces. Space is set for space
// shading, whose Transform is relative to the space.
type ShadingSurfaceGroup struct {
	Object
	ShadingType string
	Space       *Space
	Transform   math.Mat4
	Surfaces    []*Surface
}

// NewShadingSurfaceGroup creates a building shading group.
func NewShadingSurfaceGroup(name string) *ShadingSurfaceGroup {
	return &ShadingSurfaceGroup{Object: newObject(name), ShadingType: ShadingBuilding, Transform: math.Identity()}
}

// IddObjectType implements Owner.
func (*ShadingSurfaceGroup) IddObjectType() string { return TypeShadingSurfaceGroup }

// AddSurface appends a shading surface to the group.
func (g *ShadingSurfaceGroup) AddSurface(surf *Surface) {
	surf.Kind = KindShading
	surf.SurfaceType = g.ShadingType + "Shading"
	surf.group = g
	g.Surfaces = append(g.Surfaces, surf)
}

// SurfaceKind distinguishes the planar surface object types.
type SurfaceKind int

const (
	KindSurface SurfaceKind = iota
	KindSubSurface
	KindShading
	KindInteriorPartition
)

// String implements fmt.Stringer.
func (k SurfaceKind) String() string {
	switch k {
	case KindSurface:
		return "Surface"
	case KindSubSurface:
		return "SubSurface"
	case KindShading:
		return "ShadingSurface"
	case KindInteriorPartition:
		return "InteriorPartitionSurface"
	default:
		return "Unknown"
	}
}

// Surface is a planar polygon in its parent's coordinates.
type Surface struct {
	Object
	Kind                SurfaceKind
	SurfaceType         string
	Vertices            []math.Vec3
	Construction        *Construction
	BoundaryCondition   string
	BoundaryObject      *Surface
	SunExposure         string
	WindExposure        string
	IlluminanceSetpoint *float64
	SubSurfaces         []*Surface

	parent *Surface
	space  *Space
	group  *ShadingSurfaceGroup
}

// NewSurface creates a surface of the given type.
func NewSurface(name, surfaceType string, vertices []math.Vec3) *Surface {
	return &Surface{Object: newObject(name), SurfaceType: surfaceType, Vertices: vertices}
}

// IddObjectType implements Owner.
func (s *Surface) IddObjectType() string {
	switch s.Kind {
	case KindSubSurface:
		return TypeSubSurface
	case KindShading:
		return TypeShadingSurface
	case KindInteriorPartition:
		return TypeInteriorPartition
	default:
		return TypeSurface
	}
}

// AddSubSurface attaches a window or door to the surface. Sub-surfaces
// inherit the parent's boundary condition and exposure.
func (s *Surface) AddSubSurface(sub *Surface) {
	sub.Kind = KindSubSurface
	sub.parent = s
	if sub.BoundaryCondition == "" {
		sub.BoundaryCondition = s.BoundaryCondition
	}
	if sub.SunExposure == "" {
		sub.SunExposure = s.SunExposure
	}
	if sub.WindExposure == "" {
		sub.WindExposure = s.WindExposure
	}
	s.SubSurfaces = append(s.SubSurfaces, sub)
}

// Parent returns the surface a sub-surface belongs to.
func (s *Surface) Parent() *Surface {
	return s.parent
}

// Space returns the owning space, nil for site and building shading.
func (s *Surface) Space() *Space {
	switch {
	case s.parent != nil:
		return s.parent.Space()
	case s.group != nil:
		return s.group.Space
	default:
		return s.space
	}
}

// Group returns the shading group of a shading surface.
func (s *Surface) Group() *ShadingSurfaceGroup {
	return s.group
}

// Transform maps surface coordinates to building coordinates.
func (s *Surface) Transform() math.Mat4 {
	switch {
	case s.parent != nil:
		return s.parent.Transform()
	case s.group != nil:
		if s.group.Space != nil {
			return s.group.Space.Transform.Mul(s.group.Transform)
		}
		return s.group.Transform
	case s.space != nil:
		return s.space.Transform
	default:
		return math.Identity()
	}
}

// coincidenceTolerance is the distance under which two building vertices match.
const coincidenceTolerance = 0.01

// CoincidentWith reports whether both surfaces have the same vertices in
// building coordinates, in any order.
func (s *Surface) CoincidentWith(other *Surface) bool {
	if other == nil || len(s.Vertices) != len(other.Vertices) {
		return false
	}
	a := s.Transform().TransformPoints(s.Vertices)
	b := other.Transform().TransformPoints(other.Vertices)
	for _, p := range a {
		found := false
		for _, q := range b {
			if p.Distance(q) < coincidenceTolerance {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// IsWindow reports whether the sub-surface type is glazed.
func (s *Surface) IsWindow() bool {
	t := s.SurfaceType
	return strings.Contains(t, "Window") || t == "Skylight" || t == "GlassDoor" || strings.HasPrefix(t, "TubularDaylight")
}

// Model is a whole building.
type Model struct {
	NorthAxis        float64
	Constructions    []*Construction
	ThermalZones     []*ThermalZone
	SpaceTypes       []*SpaceType
	Stories          []*BuildingStory
	Units            []*BuildingUnit
	AirLoops         []*AirLoopHVAC
	ConstructionSets []*DefaultConstructionSet
	Spaces           []*Space
	ShadingGroups    []*ShadingSurfaceGroup
}

// New returns an empty model.
func New() *Model {
	return &Model{}
}

// ColorAssignment records a color synthesized for an owner without one.
type ColorAssignment struct {
	Owner Owner
	Color Color
}

// ApplyColors writes synthesized colors back onto their owners.
func ApplyColors(assignments []ColorAssignment) {
	for _, a := range assignments {
		a.Owner.SetColor(a.Color)
	}
}
