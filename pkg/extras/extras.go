// Package extras defines the semantic metadata attached to glTF nodes and
// the scene, and converts it to and from the key/value trees stored in
// glTF "extras".
package extras

import (
	"github.com/Faultbox/bldgltf/pkg/material"
	"github.com/Faultbox/bldgltf/pkg/model"
)

// Scene metadata format tags.
const (
	SceneType    = "Object"
	SceneVersion = "4.3"
)

// Ref identifies a model object by name and handle, with the derived
// material name where one applies.
type Ref struct {
	Name         string
	Handle       string
	MaterialName string
}

// IsZero reports whether the reference is empty.
func (r Ref) IsZero() bool {
	return r == (Ref{})
}

// NodeExtras is the per-surface semantic record.
type NodeExtras struct {
	Handle                  string
	Name                    string
	SurfaceType             string
	SurfaceTypeMaterialName string
	Construction            Ref

	Surface    Ref
	SubSurface Ref
	Space      Ref
	Shading    Ref

	ThermalZone     Ref
	SpaceType       Ref
	BuildingStory   Ref
	BuildingUnit    Ref
	ConstructionSet Ref

	OutsideBoundaryCondition       string
	OutsideBoundaryConditionObject Ref
	BoundaryMaterialName           string
	CoincidentWithOutsideObject    bool

	SunExposure         string
	WindExposure        string
	IlluminanceSetpoint *float64
	AirWall             bool
	AirLoopHVACs        []Ref
}

func ownerRef(o model.Owner) Ref {
	return Ref{Name: o.Name(), Handle: o.Handle(), MaterialName: material.DerivedName(o)}
}

func objectRef(o model.Owner) Ref {
	return Ref{Name: o.Name(), Handle: o.Handle()}
}

// FromRecord builds the node record of a surface.
func FromRecord(r model.Record) NodeExtras {
	s := r.Surface
	n := NodeExtras{
		Handle:                   s.Handle(),
		Name:                     s.Name(),
		SurfaceType:              s.SurfaceType,
		SurfaceTypeMaterialName:  material.SurfaceTypeMaterialName(s),
		OutsideBoundaryCondition: s.BoundaryCondition,
		BoundaryMaterialName:     material.BoundaryMaterialName(s),
		SunExposure:              s.SunExposure,
		WindExposure:             s.WindExposure,
		IlluminanceSetpoint:      s.IlluminanceSetpoint,
	}

	if c := s.Construction; c != nil {
		n.Construction = ownerRef(c)
		n.AirWall = c.AirBoundary
	}

	switch s.Kind {
	case model.KindSubSurface:
		n.SubSurface = objectRef(s)
		if p := s.Parent(); p != nil {
			n.Surface = objectRef(p)
		}
	case model.KindShading:
		if r.Group != nil {
			n.Shading = objectRef(r.Group)
		}
	default:
		n.Surface = objectRef(s)
	}

	if r.Space != nil {
		n.Space = objectRef(r.Space)
	}
	if z := r.Zone(); z != nil {
		n.ThermalZone = ownerRef(z)
	}
	if st := r.SpaceType(); st != nil {
		n.SpaceType = ownerRef(st)
	}
	if bs := r.Story(); bs != nil {
		n.BuildingStory = ownerRef(bs)
	}
	if u := r.Unit(); u != nil {
		n.BuildingUnit = ownerRef(u)
	}
	if cs := r.ConstructionSet(); cs != nil {
		n.ConstructionSet = ownerRef(cs)
	}
	for _, loop := range r.AirLoops() {
		n.AirLoopHVACs = append(n.AirLoopHVACs, ownerRef(loop))
	}

	if other := s.BoundaryObject; other != nil {
		n.OutsideBoundaryConditionObject = objectRef(other)
		n.CoincidentWithOutsideObject = s.CoincidentWith(other)
	}
	return n
}

// ObjectMetadata describes one owner object in the scene record.
type ObjectMetadata struct {
	Color                     string
	Handle                    string
	IddObjectType             string
	Name                      string
	NominalZ                  *float64
	NominalFloorCeilingHeight *float64
	Multiplier                *int
}

// NewObjectMetadata describes o. Owners without a color report the color
// of their derived material when the catalog has one.
func NewObjectMetadata(o model.Owner, catalog *material.Catalog) ObjectMetadata {
	md := ObjectMetadata{
		Handle:        o.Handle(),
		IddObjectType: o.IddObjectType(),
		Name:          o.Name(),
	}
	if c, ok := o.Color(); ok {
		md.Color = c.Hex()
	} else if catalog != nil {
		if m, ok := catalog.Lookup(material.DerivedName(o)); ok {
			md.Color = m.Color.Hex()
		}
	}

	switch v := o.(type) {
	case *model.BuildingStory:
		md.NominalZ = v.NominalZ
		md.NominalFloorCeilingHeight = v.FloorToCeilingHeight
	case *model.ThermalZone:
		mult := v.Multiplier
		md.Multiplier = &mult
	}
	return md
}

// SceneExtras is the scene level record.
type SceneExtras struct {
	Generator           string
	Type                string
	Version             string
	NorthAxis           float64
	BoundingBox         BoundingBox
	BuildingStoryNames  []string
	ModelObjectMetadata []ObjectMetadata
}

// NewSceneExtras builds the scene record from building metadata.
func NewSceneExtras(generator string, md model.Metadata, box BoundingBox, catalog *material.Catalog) SceneExtras {
	s := SceneExtras{
		Generator:          generator,
		Type:               SceneType,
		Version:            SceneVersion,
		NorthAxis:          md.NorthAxis,
		BoundingBox:        box,
		BuildingStoryNames: md.StoryNames,
	}
	for _, o := range md.Owners {
		s.ModelObjectMetadata = append(s.ModelObjectMetadata, NewObjectMetadata(o, catalog))
	}
	return s
}
