package model

import (
	"cmp"
	"slices"

	"github.com/Faultbox/bldgltf/pkg/geom"
	"github.com/Faultbox/bldgltf/pkg/math"
)

// Record is one planar surface as seen by the exporter: the surface, its
// context in the model and the transform from surface coordinates to
// building coordinates.
type Record struct {
	Surface   *Surface
	Space     *Space
	Group     *ShadingSurfaceGroup
	Transform math.Mat4
}

// Name returns the surface name.
func (r Record) Name() string { return r.Surface.Name() }

// Vertices returns the polygon in surface coordinates.
func (r Record) Vertices() []math.Vec3 { return r.Surface.Vertices }

// OutwardNormal returns the unit Newell normal in surface coordinates.
func (r Record) OutwardNormal() math.Vec3 {
	return geom.NewellNormal(r.Surface.Vertices)
}

// Holes returns the sub-surface polygons cut out of a base surface.
func (r Record) Holes() [][]math.Vec3 {
	if r.Surface.Kind != KindSurface {
		return nil
	}
	holes := make([][]math.Vec3, 0, len(r.Surface.SubSurfaces))
	for _, sub := range r.Surface.SubSurfaces {
		holes = append(holes, sub.Vertices)
	}
	return holes
}

// Zone returns the thermal zone of the owning space.
func (r Record) Zone() *ThermalZone {
	if r.Space == nil {
		return nil
	}
	return r.Space.Zone
}

// SpaceType returns the space type of the owning space.
func (r Record) SpaceType() *SpaceType {
	if r.Space == nil {
		return nil
	}
	return r.Space.SpaceType
}

// Story returns the building story of the owning space.
func (r Record) Story() *BuildingStory {
	if r.Space == nil {
		return nil
	}
	return r.Space.Story
}

// Unit returns the building unit of the owning space.
func (r Record) Unit() *BuildingUnit {
	if r.Space == nil {
		return nil
	}
	return r.Space.Unit
}

// ConstructionSet returns the default construction set of the owning space.
func (r Record) ConstructionSet() *DefaultConstructionSet {
	if r.Space == nil {
		return nil
	}
	return r.Space.ConstructionSet
}

// AirLoops returns the air loops serving the owning zone.
func (r Record) AirLoops() []*AirLoopHVAC {
	if z := r.Zone(); z != nil {
		return z.AirLoops
	}
	return nil
}

// Owners returns the semantic owners referenced by the surface, in a
// fixed order: construction, zone, space type, story, unit, air loops,
// construction set.
func (r Record) Owners() []Owner {
	var owners []Owner
	if c := r.Surface.Construction; c != nil {
		owners = append(owners, c)
	}
	if z := r.Zone(); z != nil {
		owners = append(owners, z)
	}
	if st := r.SpaceType(); st != nil {
		owners = append(owners, st)
	}
	if s := r.Story(); s != nil {
		owners = append(owners, s)
	}
	if u := r.Unit(); u != nil {
		owners = append(owners, u)
	}
	for _, loop := range r.AirLoops() {
		owners = append(owners, loop)
	}
	if cs := r.ConstructionSet(); cs != nil {
		owners = append(owners, cs)
	}
	return owners
}

func byName[T interface{ Name() string }](a, b T) int {
	return cmp.Compare(a.Name(), b.Name())
}

func sortedByName[T interface{ Name() string }](in []T) []T {
	out := slices.Clone(in)
	slices.SortStableFunc(out, byName[T])
	return out
}

// Records lists all exportable surfaces in a deterministic order. Spaces
// are visited by name; within a space come its base surfaces, then their
// sub-surfaces, then interior partitions. Shading groups follow, by name.
func (m *Model) Records() []Record {
	var records []Record

	for _, space := range sortedByName(m.Spaces) {
		surfaces := sortedByName(space.Surfaces)
		for _, s := range surfaces {
			records = append(records, Record{Surface: s, Space: space, Transform: space.Transform})
		}
		for _, s := range surfaces {
			for _, sub := range sortedByName(s.SubSurfaces) {
				records = append(records, Record{Surface: sub, Space: space, Transform: space.Transform})
			}
		}
		for _, p := range sortedByName(space.InteriorPartitions) {
			records = append(records, Record{Surface: p, Space: space, Transform: space.Transform})
		}
	}

	for _, group := range sortedByName(m.ShadingGroups) {
		for _, s := range sortedByName(group.Surfaces) {
			records = append(records, Record{Surface: s, Space: group.Space, Group: group, Transform: s.Transform()})
		}
	}

	return records
}

// Metadata is the building level information written into scene extras.
type Metadata struct {
	NorthAxis  float64
	StoryNames []string
	Owners     []Owner
}

// Metadata collects north axis, story names ordered by nominal z and the
// owner objects described in scene extras.
func (m *Model) Metadata() Metadata {
	stories := slices.Clone(m.Stories)
	slices.SortStableFunc(stories, func(a, b *BuildingStory) int {
		if c := cmp.Compare(nominalZ(a), nominalZ(b)); c != 0 {
			return c
		}
		return byName(a, b)
	})

	md := Metadata{NorthAxis: m.NorthAxis}
	for _, s := range stories {
		md.StoryNames = append(md.StoryNames, s.Name())
	}

	md.Owners = appendOwners(md.Owners, m.ThermalZones)
	md.Owners = appendOwners(md.Owners, m.Spaces)
	md.Owners = appendOwners(md.Owners, m.SpaceTypes)
	md.Owners = appendOwners(md.Owners, stories)
	md.Owners = appendOwners(md.Owners, m.Units)
	md.Owners = appendOwners(md.Owners, m.AirLoops)
	md.Owners = appendOwners(md.Owners, m.ConstructionSets)
	return md
}

func appendOwners[T Owner](owners []Owner, in []T) []Owner {
	for _, o := range sortedByName(in) {
		owners = append(owners, o)
	}
	return owners
}

func nominalZ(s *BuildingStory) float64 {
	if s.NominalZ == nil {
		return 0
	}
	return *s.NominalZ
}
