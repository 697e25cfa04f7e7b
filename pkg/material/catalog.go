// Package material builds the deduplicated material catalog of an export
// and resolves the material used by each surface.
package material

import (
	"hash/fnv"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/qmuntal/gltf"

	"github.com/Faultbox/bldgltf/pkg/model"
)

// ColorAssignment is a color synthesized for an owner that had none.
type ColorAssignment = model.ColorAssignment

// Material is a named render material.
type Material struct {
	Name        string
	Color       model.Color
	DoubleSided bool
}

// GLTF converts the material to a metallic-roughness glTF material.
func (m Material) GLTF() *gltf.Material {
	factor := m.Color.Factor()
	mat := &gltf.Material{
		Name:        m.Name,
		DoubleSided: m.DoubleSided,
		AlphaMode:   gltf.AlphaOpaque,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &factor,
			MetallicFactor:  gltf.Float(0),
			RoughnessFactor: gltf.Float(1),
		},
	}
	if m.Color.A < 255 {
		mat.AlphaMode = gltf.AlphaBlend
	}
	return mat
}

// Catalog is the ordered, name-unique set of palette and derived materials.
type Catalog struct {
	materials  []Material
	index      map[string]int
	paletteLen int
}

// NewCatalog returns a catalog holding only the fixed palette.
func NewCatalog() *Catalog {
	palette := Palette()
	c := &Catalog{index: make(map[string]int, len(palette))}
	for _, m := range palette {
		c.add(m)
	}
	c.paletteLen = len(c.materials)
	return c
}

// add inserts m unless a material of that name exists.
func (c *Catalog) add(m Material) bool {
	if _, ok := c.index[m.Name]; ok {
		return false
	}
	c.index[m.Name] = len(c.materials)
	c.materials = append(c.materials, m)
	return true
}

// Lookup returns the material with the given name.
func (c *Catalog) Lookup(name string) (Material, bool) {
	i, ok := c.index[name]
	if !ok {
		return Material{}, false
	}
	return c.materials[i], true
}

// Index returns the catalog position of name.
func (c *Catalog) Index(name string) (int, bool) {
	i, ok := c.index[name]
	return i, ok
}

// Materials returns all materials in insertion order.
func (c *Catalog) Materials() []Material {
	return c.materials
}

// Len returns the number of materials.
func (c *Catalog) Len() int {
	return len(c.materials)
}

// PaletteLen returns the number of fixed palette materials.
func (c *Catalog) PaletteLen() int {
	return c.paletteLen
}

// DerivedName is the material name of an owner object: its IDD type and
// name joined by an underscore. Air boundary constructions map to AirWall.
func DerivedName(o model.Owner) string {
	if c, ok := o.(*model.Construction); ok && c.AirBoundary {
		return AirWall
	}
	return o.IddObjectType() + "_" + o.Name()
}

// BuildCatalog extends the palette with one material per distinct owner
// referenced by the records. Owners without a color get one synthesized
// from their name; those colors are returned, the owners are not touched.
func BuildCatalog(records []model.Record) (*Catalog, []ColorAssignment) {
	c := NewCatalog()
	var assigned []ColorAssignment

	for _, r := range records {
		for _, o := range r.Owners() {
			name := DerivedName(o)
			if name == AirWall {
				continue
			}
			if _, ok := c.index[name]; ok {
				continue
			}

			color, ok := o.Color()
			if !ok {
				color = SynthesizeColor(o.Name())
				assigned = append(assigned, ColorAssignment{Owner: o, Color: color})
			}
			c.add(Material{Name: name, Color: color, DoubleSided: color.A < 255})
		}
	}
	return c, assigned
}

// SynthesizeColor derives a stable color from a name.
func SynthesizeColor(name string) model.Color {
	h := fnv.New32a()
	h.Write([]byte(name))
	sum := h.Sum32()

	hue := float64(sum % 360)
	sat := 0.45 + float64((sum>>9)%40)/100
	val := 0.60 + float64((sum>>17)%35)/100
	return model.FromColorful(colorful.Hsv(hue, sat, val), 255)
}

// Set is the material array of one output document. Materials enter it
// lazily, in first-use order, after Undefined at index 0.
type Set struct {
	catalog   *Catalog
	materials []*gltf.Material
	local     map[string]uint32
}

// NewSet returns a set seeded with Undefined.
func NewSet(catalog *Catalog) *Set {
	s := &Set{catalog: catalog, local: make(map[string]uint32)}
	undefined, ok := catalog.Lookup(Undefined)
	if !ok {
		undefined = Material{Name: Undefined, Color: model.RGB(255, 255, 255)}
	}
	s.local[Undefined] = 0
	s.materials = append(s.materials, undefined.GLTF())
	return s
}

// Resolve returns the output index of name: an already placed material,
// else the catalog entry appended now, else Undefined.
func (s *Set) Resolve(name string) uint32 {
	if i, ok := s.local[name]; ok {
		return i
	}
	m, ok := s.catalog.Lookup(name)
	if !ok {
		return 0
	}
	i := uint32(len(s.materials))
	s.local[name] = i
	s.materials = append(s.materials, m.GLTF())
	return i
}

// Materials returns the output material array.
func (s *Set) Materials() []*gltf.Material {
	return s.materials
}
