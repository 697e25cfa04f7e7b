package material

import (
	"fmt"
	"strings"

	"github.com/Faultbox/bldgltf/pkg/model"
)

// ColorBy selects which material a surface's primitive uses.
type ColorBy string

const (
	BySurfaceType   ColorBy = "surface_type"
	ByExposure      ColorBy = "surface_type_exposure"
	ByBoundary      ColorBy = "boundary"
	ByConstruction  ColorBy = "construction"
	ByThermalZone   ColorBy = "thermal_zone"
	BySpaceType     ColorBy = "space_type"
	ByBuildingStory ColorBy = "building_story"
	ByBuildingUnit  ColorBy = "building_unit"
)

// ParseColorBy validates a scheme name; empty selects surface_type.
func ParseColorBy(s string) (ColorBy, error) {
	switch c := ColorBy(s); c {
	case "":
		return BySurfaceType, nil
	case BySurfaceType, ByExposure, ByBoundary, ByConstruction,
		ByThermalZone, BySpaceType, ByBuildingStory, ByBuildingUnit:
		return c, nil
	default:
		return "", fmt.Errorf("unknown color scheme %q", s)
	}
}

// MaterialName returns the material name the scheme picks for r. An empty
// name resolves to Undefined.
func (c ColorBy) MaterialName(r model.Record) string {
	switch c {
	case ByExposure:
		return ExposureMaterialName(r.Surface)
	case ByBoundary:
		return BoundaryMaterialName(r.Surface)
	case ByConstruction:
		return ownerName(r.Surface.Construction)
	case ByThermalZone:
		return ownerName(r.Zone())
	case BySpaceType:
		return ownerName(r.SpaceType())
	case ByBuildingStory:
		return ownerName(r.Story())
	case ByBuildingUnit:
		return ownerName(r.Unit())
	default:
		return SurfaceTypeMaterialName(r.Surface)
	}
}

// ownerName guards against typed nil owners.
func ownerName[T interface {
	comparable
	model.Owner
}](o T) string {
	var zero T
	if o == zero {
		return ""
	}
	return DerivedName(o)
}

// SurfaceTypeMaterialName maps a surface type to its palette group.
// Surfaces with an air boundary construction use AirWall.
func SurfaceTypeMaterialName(s *model.Surface) string {
	if s.Construction != nil && s.Construction.AirBoundary {
		return AirWall
	}
	switch s.Kind {
	case model.KindShading:
		if s.SurfaceType != "" {
			return s.SurfaceType
		}
		return "BuildingShading"
	case model.KindInteriorPartition:
		return "InteriorPartitionSurface"
	}

	if s.IsWindow() {
		if s.SurfaceType == "Skylight" || strings.HasPrefix(s.SurfaceType, "TubularDaylight") {
			return "Skylight"
		}
		return "Window"
	}
	switch s.SurfaceType {
	case "Door", "OverheadDoor":
		return "Door"
	case "Wall", "Floor", "RoofCeiling":
		return s.SurfaceType
	default:
		return "NormalMaterial"
	}
}

// ExposureMaterialName is the surface type material with an _Ext suffix
// for surfaces facing outdoors and _Int for surfaces facing other spaces.
func ExposureMaterialName(s *model.Surface) string {
	base := SurfaceTypeMaterialName(s)
	if base == AirWall {
		return base
	}
	if s.Kind == model.KindInteriorPartition {
		return base + SuffixInterior
	}
	switch s.BoundaryCondition {
	case "Outdoors":
		return base + SuffixExterior
	case "Surface", "Adiabatic", "Space":
		return base + SuffixInterior
	default:
		return base
	}
}

// BoundaryMaterialName maps the outside boundary condition to its palette
// entry. Outdoor surfaces are split by sun and wind exposure.
func BoundaryMaterialName(s *model.Surface) string {
	switch s.Kind {
	case model.KindShading:
		return boundaryPrefix + "Shading"
	case model.KindInteriorPartition:
		return boundaryPrefix + "InteriorPartition"
	}

	bc := s.BoundaryCondition
	if bc == "" {
		return ""
	}
	if bc == "Outdoors" {
		sun := s.SunExposure == "SunExposed"
		wind := s.WindExposure == "WindExposed"
		switch {
		case sun && wind:
			bc += "_SunWind"
		case sun:
			bc += "_Sun"
		case wind:
			bc += "_Wind"
		}
	}
	return boundaryPrefix + bc
}
