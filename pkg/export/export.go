// Package export assembles a glTF document from building surfaces: one
// mesh and node per surface under a Z-up root node, with semantic
// metadata in node and scene extras.
package export

import (
	"errors"
	"fmt"
	gomath "math"

	"github.com/qmuntal/gltf"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/bldgltf/pkg/bufpack"
	"github.com/Faultbox/bldgltf/pkg/extras"
	"github.com/Faultbox/bldgltf/pkg/geom"
	"github.com/Faultbox/bldgltf/pkg/material"
	"github.com/Faultbox/bldgltf/pkg/math"
	"github.com/Faultbox/bldgltf/pkg/model"
)

// DefaultGenerator is the asset generator written when none is set.
const DefaultGenerator = "bldgltf"

// RootNodeName names the node rotating the Z-up building into glTF's Y-up
// frame.
const RootNodeName = "Z_UP"

// Surface errors.
var (
	ErrEmptySubSurface = errors.New("sub-surface has no vertices")
	ErrTooFewVertices  = errors.New("surface has fewer than 3 vertices")
	ErrIncompleteMesh  = errors.New("mesh has no triangles or mismatched attributes")
)

// Source is the read side of a building model.
type Source interface {
	Records() []model.Record
	Metadata() model.Metadata
}

// Options configures an export.
type Options struct {
	// Logger receives per-surface diagnostics; nil discards them.
	Logger *zap.Logger
	// Progress is called after each surface with the number processed.
	Progress func(done, total int)
	// Tolerance is the vertex merge distance; zero selects geom.DefaultTolerance.
	Tolerance float64
	ColorBy   material.ColorBy
	Generator string
}

// Result is an exported document and what happened while building it.
type Result struct {
	Document         *gltf.Document
	Catalog          *material.Catalog
	ColorAssignments []material.ColorAssignment
	Scene            extras.SceneExtras
	Bounds           extras.BoundingBox
	// Exported and Skipped hold surface names.
	Exported []string
	Skipped  []string
	// Err combines the errors of skipped surfaces.
	Err error
}

// mesh is the triangulated geometry of one surface in building coordinates.
type mesh struct {
	indices   []uint32
	positions [][3]float32
	normals   [][3]float32
}

// check reports whether every accessor of the mesh can be packed, so a
// surface is either packed whole or not at all.
func (m *mesh) check() error {
	if len(m.indices) == 0 || len(m.indices)%3 != 0 ||
		len(m.positions) == 0 || len(m.normals) != len(m.positions) {
		return ErrIncompleteMesh
	}
	for _, i := range m.indices {
		if int(i) >= len(m.positions) {
			return fmt.Errorf("%w: index %d out of %d vertices", ErrIncompleteMesh, i, len(m.positions))
		}
	}
	return nil
}

// Export builds the document for every record of src. Surfaces that fail
// to triangulate are logged and skipped. It fails with bufpack.ErrNoData
// when no surface produced geometry.
func Export(src Source, opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	colorBy := opts.ColorBy
	if colorBy == "" {
		colorBy = material.BySurfaceType
	}
	generator := opts.Generator
	if generator == "" {
		generator = DefaultGenerator
	}

	records := src.Records()
	catalog, assigned := material.BuildCatalog(records)
	materials := material.NewSet(catalog)
	packer := bufpack.New()
	box := extras.NewBoundingBox()

	res := &Result{Catalog: catalog, ColorAssignments: assigned}

	doc := gltf.NewDocument()
	root := &gltf.Node{
		Name:     RootNodeName,
		Rotation: math.QuatFromAxisAngle(math.Vec3{X: 1}, -gomath.Pi/2).Float32(),
	}
	doc.Nodes = []*gltf.Node{root}

	log.Info("exporting surfaces",
		zap.Int("surfaces", len(records)),
		zap.Int("materials", catalog.Len()),
		zap.String("color_by", string(colorBy)))

	for i, r := range records {
		if err := addSurface(doc, packer, materials, &box, r, colorBy, opts.Tolerance); err != nil {
			err = fmt.Errorf("surface %q: %w", r.Name(), err)
			log.Error("skipping surface", zap.String("surface", r.Name()), zap.Error(err))
			res.Skipped = append(res.Skipped, r.Name())
			res.Err = multierr.Append(res.Err, err)
		} else {
			root.Children = append(root.Children, uint32(len(doc.Nodes)-1))
			res.Exported = append(res.Exported, r.Name())
		}
		if opts.Progress != nil {
			opts.Progress(i+1, len(records))
		}
	}

	layout, err := packer.Finalize()
	if err != nil {
		if errors.Is(err, bufpack.ErrNoData) {
			log.Error("no geometry exported", zap.Int("skipped", len(res.Skipped)))
		}
		return nil, fmt.Errorf("finalizing buffers: %w", err)
	}
	layout.Apply(doc)
	doc.Buffers[0].EmbeddedResource()
	doc.Materials = materials.Materials()

	res.Bounds = box
	res.Scene = extras.NewSceneExtras(generator, src.Metadata(), box, catalog)

	doc.Asset.Generator = generator
	doc.Asset.Version = "2.0"
	doc.Scene = gltf.Index(0)
	doc.Scenes = []*gltf.Scene{{
		Name:   "Scene",
		Nodes:  []uint32{0},
		Extras: res.Scene.ToMap(),
	}}
	res.Document = doc

	log.Info("export complete",
		zap.Int("exported", len(res.Exported)),
		zap.Int("skipped", len(res.Skipped)),
		zap.Int("accessors", len(doc.Accessors)),
		zap.Int("materials", len(doc.Materials)))
	return res, nil
}

// addSurface triangulates r and appends its accessors, mesh and node.
// Nothing is packed unless triangulation succeeds.
func addSurface(doc *gltf.Document, packer *bufpack.Packer, materials *material.Set, box *extras.BoundingBox,
	r model.Record, colorBy material.ColorBy, tolerance float64) error {

	m, err := triangulate(r, tolerance)
	if err != nil {
		return err
	}
	if err := m.check(); err != nil {
		return err
	}

	indices, err := packer.PackIndices(m.indices)
	if err != nil {
		return err
	}
	positions, err := packer.PackVec3(m.positions)
	if err != nil {
		return err
	}
	normals, err := packer.PackVec3(m.normals)
	if err != nil {
		return err
	}

	for _, p := range m.positions {
		box.Extend(math.Vec3{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2])})
	}

	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Name: r.Name(),
		Primitives: []*gltf.Primitive{{
			Attributes: map[string]uint32{
				gltf.POSITION: positions,
				gltf.NORMAL:   normals,
			},
			Indices:  gltf.Index(indices),
			Material: gltf.Index(materials.Resolve(colorBy.MaterialName(r))),
			Mode:     gltf.PrimitiveTriangles,
		}},
	})
	doc.Nodes = append(doc.Nodes, &gltf.Node{
		Name:   r.Name(),
		Mesh:   gltf.Index(uint32(len(doc.Meshes) - 1)),
		Extras: extras.FromRecord(r).ToMap(),
	})
	return nil
}

// triangulate works in the surface's face frame: the polygon and its holes
// are flattened, reversed and triangulated, then each triangle is walked
// in reverse so front faces wind counter-clockwise about the outward normal.
func triangulate(r model.Record, tolerance float64) (*mesh, error) {
	verts := r.Vertices()
	if len(verts) < 3 {
		return nil, ErrTooFewVertices
	}

	face, err := geom.AlignFace(verts)
	if err != nil {
		return nil, fmt.Errorf("aligning face: %w", err)
	}
	inv := face.Inverse()

	boundary := geom.Reverse(geom.Flatten(inv, verts))
	var holes []geom.Polygon
	for i, h := range r.Holes() {
		if len(h) == 0 {
			return nil, fmt.Errorf("hole %d: %w", i, ErrEmptySubSurface)
		}
		holes = append(holes, geom.Reverse(geom.Flatten(inv, h)))
	}

	tris, err := geom.Triangulate(boundary, holes)
	if err != nil {
		return nil, fmt.Errorf("triangulating: %w", err)
	}

	indexer := geom.NewVertexIndexer(tolerance)
	indices := make([]uint32, 0, len(tris)*3)
	for _, t := range tris {
		for k := 2; k >= 0; k-- {
			indices = append(indices, indexer.Index(geom.Lift(face, t[k])))
		}
	}

	normal := r.Transform.TransformDirection(r.OutwardNormal()).Normalize().Float32()
	vertices := r.Transform.TransformPoints(indexer.Vertices())

	m := &mesh{
		indices:   indices,
		positions: make([][3]float32, len(vertices)),
		normals:   make([][3]float32, len(vertices)),
	}
	for i, v := range vertices {
		m.positions[i] = v.Float32()
		m.normals[i] = normal
	}
	return m, nil
}
