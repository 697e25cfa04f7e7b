package model

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Faultbox/bldgltf/pkg/math"
)

const sampleYAML = `
north_axis: 15
constructions:
  - name: Exterior Wall
    color: "#ccb266"
  - name: Air Wall
    air_boundary: true
air_loops:
  - name: AHU 1
thermal_zones:
  - name: Zone 1
    multiplier: 2
    air_loops: [AHU 1]
space_types:
  - name: Office
building_stories:
  - name: Story 2
    nominal_z: 3
  - name: Story 1
    nominal_z: 0
    floor_to_ceiling_height: 3
building_units:
  - name: Unit A
spaces:
  - name: Space B
    thermal_zone: Zone 1
    building_story: Story 1
    origin: [10, 0, 0]
    surfaces:
      - name: B Floor
        type: Floor
        boundary_condition: Ground
        vertices: [[0, 0, 0], [0, 5, 0], [5, 5, 0], [5, 0, 0]]
  - name: Space A
    handle: "{aaaa}"
    thermal_zone: Zone 1
    space_type: Office
    building_story: Story 1
    building_unit: Unit A
    surfaces:
      - name: Wall South
        type: Wall
        construction: Exterior Wall
        boundary_condition: Outdoors
        sun_exposure: SunExposed
        wind_exposure: WindExposed
        vertices: [[0, 0, 3], [0, 0, 0], [10, 0, 0], [10, 0, 3]]
        sub_surfaces:
          - name: Window 2
            type: FixedWindow
            vertices: [[6, 0, 2], [6, 0, 1], [8, 0, 1], [8, 0, 2]]
          - name: Window 1
            type: FixedWindow
            vertices: [[2, 0, 2], [2, 0, 1], [4, 0, 1], [4, 0, 2]]
      - name: Wall East
        type: Wall
        construction: Air Wall
        boundary_condition: Surface
        boundary_object: B Floor
        vertices: [[10, 0, 3], [10, 0, 0], [10, 5, 0], [10, 5, 3]]
    interior_partitions:
      - name: Partition
        vertices: [[5, 0, 0], [5, 5, 0], [5, 5, 3]]
shading_groups:
  - name: Overhang
    type: Space
    space: Space A
    surfaces:
      - name: Fin
        vertices: [[0, -1, 3], [10, -1, 3], [10, 0, 3], [0, 0, 3]]
`

func parseSample(t *testing.T) *Model {
	t.Helper()
	m, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return m
}

func TestParse(t *testing.T) {
	m := parseSample(t)

	if m.NorthAxis != 15 {
		t.Errorf("expected north axis 15, got %v", m.NorthAxis)
	}
	if len(m.Spaces) != 2 || len(m.Constructions) != 2 || len(m.ThermalZones) != 1 {
		t.Fatalf("unexpected object counts: %d spaces, %d constructions, %d zones",
			len(m.Spaces), len(m.Constructions), len(m.ThermalZones))
	}

	zone := m.ThermalZones[0]
	if zone.Multiplier != 2 || len(zone.AirLoops) != 1 || zone.AirLoops[0].Name() != "AHU 1" {
		t.Errorf("unexpected zone %+v", zone)
	}

	wall, _ := m.Constructions[0].Color()
	if wall != RGB(204, 178, 102) {
		t.Errorf("expected construction color #ccb266, got %v", wall)
	}
	if m.Constructions[1].IddObjectType() != TypeConstructionAirBoundary {
		t.Errorf("expected air boundary construction, got %s", m.Constructions[1].IddObjectType())
	}

	spaceA := m.Spaces[1]
	if spaceA.Handle() != "{aaaa}" {
		t.Errorf("expected explicit handle, got %s", spaceA.Handle())
	}
	south := spaceA.Surfaces[0]
	if len(south.SubSurfaces) != 2 {
		t.Fatalf("expected 2 sub-surfaces, got %d", len(south.SubSurfaces))
	}
	win := south.SubSurfaces[0]
	if win.Kind != KindSubSurface || win.Parent() != south {
		t.Error("sub-surface not attached to its parent")
	}
	if win.BoundaryCondition != "Outdoors" || win.SunExposure != "SunExposed" {
		t.Errorf("sub-surface should inherit exposure, got %q/%q", win.BoundaryCondition, win.SunExposure)
	}
	if !win.IsWindow() {
		t.Error("FixedWindow should be a window")
	}

	east := spaceA.Surfaces[1]
	if east.BoundaryObject == nil || east.BoundaryObject.Name() != "B Floor" {
		t.Error("boundary object not resolved")
	}

	part := spaceA.InteriorPartitions[0]
	if part.Kind != KindInteriorPartition || part.IddObjectType() != TypeInteriorPartition {
		t.Errorf("unexpected partition kind %v", part.Kind)
	}

	fin := m.ShadingGroups[0].Surfaces[0]
	if fin.SurfaceType != "SpaceShading" || fin.Kind != KindShading {
		t.Errorf("unexpected shading surface type %q", fin.SurfaceType)
	}

	spaceB := m.Spaces[0]
	if got := spaceB.Transform.TransformPoint(math.Vec3{}); got != (math.Vec3{X: 10}) {
		t.Errorf("space origin not applied, got %v", got)
	}
	if !strings.HasPrefix(spaceB.Handle(), "{") || !strings.HasSuffix(spaceB.Handle(), "}") || len(spaceB.Handle()) != 38 {
		t.Errorf("generated handle %q is not {uuid}", spaceB.Handle())
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want error
	}{
		{
			name: "unknown zone",
			yaml: "spaces:\n  - name: S\n    thermal_zone: Nope\n",
			want: ErrUnknownReference,
		},
		{
			name: "unknown construction",
			yaml: "spaces:\n  - name: S\n    surfaces:\n      - name: W\n        construction: Nope\n        vertices: [[0,0,0],[1,0,0],[1,1,0]]\n",
			want: ErrUnknownReference,
		},
		{
			name: "unknown boundary object",
			yaml: "spaces:\n  - name: S\n    surfaces:\n      - name: W\n        boundary_object: Nope\n        vertices: [[0,0,0],[1,0,0],[1,1,0]]\n",
			want: ErrUnknownReference,
		},
		{
			name: "duplicate zone",
			yaml: "thermal_zones:\n  - name: Z\n  - name: Z\n",
			want: ErrDuplicateName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestParseShortVertexLists(t *testing.T) {
	yaml := `
spaces:
  - name: S
    surfaces:
      - name: Wall
        vertices: [[0, 0, 0], [4, 0, 0], [4, 0, 3], [0, 0, 3]]
        sub_surfaces:
          - name: Window
            vertices: []
      - name: Sliver
        vertices: [[0, 0, 0], [1, 0, 0]]
`
	m, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("short polygons are skipped at export, not rejected: %v", err)
	}
	wall := m.Spaces[0].Surfaces[0]
	if len(wall.SubSurfaces) != 1 || len(wall.SubSurfaces[0].Vertices) != 0 {
		t.Errorf("expected an empty window, got %+v", wall.SubSurfaces)
	}
	if len(m.Spaces[0].Surfaces[1].Vertices) != 2 {
		t.Error("sliver vertices lost")
	}
}

func TestParseBoundaryErrorOrder(t *testing.T) {
	yaml := `
spaces:
  - name: S
    surfaces:
      - name: A
        boundary_object: Missing A
        vertices: [[0, 0, 0], [1, 0, 0], [1, 1, 0]]
      - name: B
        boundary_object: Missing B
        vertices: [[0, 0, 0], [1, 0, 0], [1, 1, 0]]
      - name: C
        boundary_object: Missing C
        vertices: [[0, 0, 0], [1, 0, 0], [1, 1, 0]]
`
	for i := 0; i < 20; i++ {
		_, err := Parse([]byte(yaml))
		if !errors.Is(err, ErrUnknownReference) {
			t.Fatalf("expected ErrUnknownReference, got %v", err)
		}
		if !strings.Contains(err.Error(), `surface "A"`) {
			t.Fatalf("expected the first surface in file order to be reported, got %v", err)
		}
	}
}

func TestParseBadColor(t *testing.T) {
	if _, err := Parse([]byte("space_types:\n  - name: X\n    color: red\n")); err == nil {
		t.Error("expected error for non-hex color")
	}
}

func TestRecordsOrder(t *testing.T) {
	m := parseSample(t)

	var names []string
	for _, r := range m.Records() {
		names = append(names, r.Name())
	}

	want := []string{
		"Wall East", "Wall South", "Window 1", "Window 2", "Partition",
		"B Floor",
		"Fin",
	}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("record order:\n got  %v\n want %v", names, want)
	}
}

func TestRecordContext(t *testing.T) {
	m := parseSample(t)
	records := m.Records()

	south := records[1]
	if len(south.Holes()) != 2 {
		t.Errorf("expected 2 holes, got %d", len(south.Holes()))
	}
	if south.Zone().Name() != "Zone 1" || south.Story().Name() != "Story 1" || south.Unit().Name() != "Unit A" {
		t.Error("record context not resolved from the space")
	}

	owners := south.Owners()
	var types []string
	for _, o := range owners {
		types = append(types, o.IddObjectType())
	}
	want := []string{TypeConstruction, TypeThermalZone, TypeSpaceType, TypeBuildingStory, TypeBuildingUnit, TypeAirLoopHVAC}
	if strings.Join(types, ",") != strings.Join(want, ",") {
		t.Errorf("owners: got %v, want %v", types, want)
	}

	window := records[2]
	if window.Holes() != nil {
		t.Error("sub-surfaces have no holes")
	}

	n := south.OutwardNormal()
	if n.Distance(math.Vec3{Y: -1}) > 1e-9 {
		t.Errorf("expected south normal (0,-1,0), got %v", n)
	}

	fin := records[len(records)-1]
	if fin.Space == nil || fin.Group == nil || fin.Zone().Name() != "Zone 1" {
		t.Error("space shading should carry its space context")
	}
}

func TestMetadata(t *testing.T) {
	m := parseSample(t)
	md := m.Metadata()

	if strings.Join(md.StoryNames, ",") != "Story 1,Story 2" {
		t.Errorf("stories should be ordered by nominal z, got %v", md.StoryNames)
	}

	var types []string
	for _, o := range md.Owners {
		types = append(types, o.IddObjectType())
	}
	want := []string{
		TypeThermalZone,
		TypeSpace, TypeSpace,
		TypeSpaceType,
		TypeBuildingStory, TypeBuildingStory,
		TypeBuildingUnit,
		TypeAirLoopHVAC,
	}
	if strings.Join(types, ",") != strings.Join(want, ",") {
		t.Errorf("owners: got %v, want %v", types, want)
	}
	if md.Owners[1].Name() != "Space A" {
		t.Errorf("owners of one type should be sorted by name, got %s first", md.Owners[1].Name())
	}
}

func TestApplyColors(t *testing.T) {
	zone := NewThermalZone("Z")
	if _, ok := zone.Color(); ok {
		t.Fatal("new zone should have no color")
	}

	ApplyColors([]ColorAssignment{{Owner: zone, Color: RGB(1, 2, 3)}})
	c, ok := zone.Color()
	if !ok || c != RGB(1, 2, 3) {
		t.Errorf("expected applied color, got %v %v", c, ok)
	}
}

func TestColorHex(t *testing.T) {
	tests := []struct {
		in   string
		want Color
	}{
		{"#ccb266", RGB(204, 178, 102)},
		{"#66b2cc99", Color{102, 178, 204, 153}},
		{"#000000", RGB(0, 0, 0)},
	}

	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if err != nil {
			t.Fatalf("ParseColor(%q) failed: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if got.Hex() != tt.in {
			t.Errorf("Hex() = %q, want %q", got.Hex(), tt.in)
		}
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "building.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if len(m.Records()) != 7 {
		t.Errorf("expected 7 records, got %d", len(m.Records()))
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestCoincidentWith(t *testing.T) {
	a := NewSpace("A")
	b := NewSpace("B")
	b.Transform = math.Translate(10, 0, 0)

	wa := NewSurface("A East", "Wall", []math.Vec3{{X: 10, Z: 3}, {X: 10}, {X: 10, Y: 5}, {X: 10, Y: 5, Z: 3}})
	wb := NewSurface("B West", "Wall", []math.Vec3{{Y: 5, Z: 3}, {Y: 5}, {}, {Z: 3}})
	wc := NewSurface("B Other", "Wall", []math.Vec3{{Y: 6, Z: 3}, {Y: 6}, {}, {Z: 3}})
	a.AddSurface(wa)
	b.AddSurface(wb)
	b.AddSurface(wc)

	if !wa.CoincidentWith(wb) || !wb.CoincidentWith(wa) {
		t.Error("matching walls in building coordinates should coincide")
	}
	if wa.CoincidentWith(wc) {
		t.Error("different walls should not coincide")
	}
	if wa.CoincidentWith(nil) {
		t.Error("nil never coincides")
	}

	win := NewSurface("Win", "FixedWindow", []math.Vec3{{Y: 1, Z: 1}, {Y: 1, Z: 2}, {Y: 2, Z: 2}})
	wb.AddSubSurface(win)
	if win.Space() != b || win.Transform() != b.Transform {
		t.Error("sub-surfaces take the parent's space and transform")
	}
}

func TestWriteColors(t *testing.T) {
	src := []byte(`# site survey
constructions:
  - name: Ext Wall
    color: "#ff0000" # painted
thermal_zones:
  - name: Zone 1
spaces:
  - name: Room
    thermal_zone: Zone 1
    surfaces:
      - name: Floor
        type: Floor
        vertices: [[0, 1, 0], [1, 1, 0], [1, 0, 0]]
`)
	m, err := Parse(src)
	if err != nil {
		t.Fatal(err)
	}
	ext, zone := m.Constructions[0], m.ThermalZones[0]

	out, err := WriteColors(src, []ColorAssignment{
		{Owner: zone, Color: RGB(0x12, 0x34, 0x56)},
		{Owner: ext, Color: Color{R: 1, G: 2, B: 3, A: 128}},
	})
	if err != nil {
		t.Fatalf("WriteColors failed: %v", err)
	}
	if !strings.Contains(string(out), "# site survey") {
		t.Errorf("comments dropped:\n%s", out)
	}

	back, err := Parse(out)
	if err != nil {
		t.Fatalf("parsing written file: %v\n%s", err, out)
	}
	if c, ok := back.ThermalZones[0].Color(); !ok || c.Hex() != "#123456" {
		t.Errorf("zone color %v, %v", c, ok)
	}
	if c, ok := back.Constructions[0].Color(); !ok || c != (Color{R: 1, G: 2, B: 3, A: 128}) {
		t.Errorf("construction color %v, %v", c, ok)
	}
	if len(back.Records()) != 1 {
		t.Errorf("surfaces lost in rewrite")
	}
}

func TestWriteColorsErrors(t *testing.T) {
	src := []byte("thermal_zones:\n  - name: Zone 1\n")

	if out, err := WriteColors(src, nil); err != nil || string(out) != string(src) {
		t.Errorf("no assignments should return the input, got %q, %v", out, err)
	}

	tests := []struct {
		name  string
		owner Owner
	}{
		{"missing name", NewThermalZone("Zone 2")},
		{"missing section", NewBuildingStory("Level 1")},
		{"not a listed type", NewSurface("Floor", "Floor", nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := WriteColors(src, []ColorAssignment{{Owner: tt.owner, Color: RGB(1, 2, 3)}})
			if !errors.Is(err, ErrNotInFile) {
				t.Errorf("expected ErrNotInFile, got %v", err)
			}
		})
	}
}
