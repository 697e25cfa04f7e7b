// Package bufpack packs index and vertex data into the byte regions behind
// glTF accessors.
//
// A Packer owns two append-only regions: one for triangle indices, one for
// positions and normals. Accessors are created as data is appended and are
// never rewritten. Finalize concatenates the regions, index region first,
// into a single buffer with one buffer view per region.
package bufpack

import (
	"errors"
	"fmt"
	gomath "math"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/binary"
)

// Packing errors.
var (
	ErrNoData    = errors.New("no geometry data: coordinate region is empty")
	ErrFinalized = errors.New("packer already finalized")
	ErrEmpty     = errors.New("empty accessor data")
)

// Buffer view indices of a finalized layout.
const (
	IndexView uint32 = 0
	CoordView uint32 = 1
)

// vec3Stride is the byte size of one float VEC3 element.
const vec3Stride = 12

// Region is an append-only byte region.
type Region struct {
	data []byte
}

// Len returns the region length in bytes.
func (r *Region) Len() int {
	return len(r.data)
}

// Bytes returns the region contents.
func (r *Region) Bytes() []byte {
	return r.data
}

// pad zero-fills the region up to a multiple of align.
func (r *Region) pad(align int) {
	for len(r.data)%align != 0 {
		r.data = append(r.data, 0)
	}
}

// Packer accumulates accessors over the index and coordinate regions.
// It is single-pass and not safe for concurrent use.
type Packer struct {
	indices   Region
	coords    Region
	accessors []*gltf.Accessor
	finalized bool
}

// New returns an empty packer.
func New() *Packer {
	return &Packer{}
}

// IndexComponentType picks the narrowest unsigned type holding maxIndex.
func IndexComponentType(maxIndex uint32) gltf.ComponentType {
	switch {
	case maxIndex <= gomath.MaxUint8:
		return gltf.ComponentUbyte
	case maxIndex <= gomath.MaxUint16:
		return gltf.ComponentUshort
	default:
		return gltf.ComponentUint
	}
}

// PackIndices appends a SCALAR index accessor and returns its id.
func (p *Packer) PackIndices(indices []uint32) (uint32, error) {
	if p.finalized {
		return 0, ErrFinalized
	}
	if len(indices) == 0 {
		return 0, ErrEmpty
	}

	lo, hi := indices[0], indices[0]
	for _, v := range indices[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	ct := IndexComponentType(hi)
	size := ct.ByteSize()

	var data any
	switch ct {
	case gltf.ComponentUbyte:
		narrow := make([]uint8, len(indices))
		for i, v := range indices {
			narrow[i] = uint8(v)
		}
		data = narrow
	case gltf.ComponentUshort:
		narrow := make([]uint16, len(indices))
		for i, v := range indices {
			narrow[i] = uint16(v)
		}
		data = narrow
	default:
		data = indices
	}

	p.indices.pad(int(size))
	p.indices.pad(4)
	offset := uint32(p.indices.Len())

	buf := make([]byte, uint32(len(indices))*size)
	if err := binary.Write(buf, 0, data); err != nil {
		return 0, fmt.Errorf("writing indices: %w", err)
	}
	p.indices.data = append(p.indices.data, buf...)

	return p.add(&gltf.Accessor{
		BufferView:    gltf.Index(IndexView),
		ByteOffset:    offset,
		ComponentType: ct,
		Count:         uint32(len(indices)),
		Type:          gltf.AccessorScalar,
		Min:           []float32{float32(lo)},
		Max:           []float32{float32(hi)},
	}), nil
}

// PackVec3 appends a float VEC3 accessor and returns its id.
func (p *Packer) PackVec3(values [][3]float32) (uint32, error) {
	if p.finalized {
		return 0, ErrFinalized
	}
	if len(values) == 0 {
		return 0, ErrEmpty
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		for c := 0; c < 3; c++ {
			lo[c] = min(lo[c], v[c])
			hi[c] = max(hi[c], v[c])
		}
	}

	p.coords.pad(4)
	offset := uint32(p.coords.Len())

	buf := make([]byte, len(values)*vec3Stride)
	if err := binary.Write(buf, 0, values); err != nil {
		return 0, fmt.Errorf("writing vec3: %w", err)
	}
	p.coords.data = append(p.coords.data, buf...)

	return p.add(&gltf.Accessor{
		BufferView:    gltf.Index(CoordView),
		ByteOffset:    offset,
		ComponentType: gltf.ComponentFloat,
		Count:         uint32(len(values)),
		Type:          gltf.AccessorVec3,
		Min:           lo[:],
		Max:           hi[:],
	}), nil
}

func (p *Packer) add(a *gltf.Accessor) uint32 {
	p.accessors = append(p.accessors, a)
	return uint32(len(p.accessors) - 1)
}

// Accessors returns the accessors created so far.
func (p *Packer) Accessors() []*gltf.Accessor {
	return p.accessors
}

// Layout is the finalized buffer, its two views and all accessors.
type Layout struct {
	Buffer      *gltf.Buffer
	BufferViews []*gltf.BufferView
	Accessors   []*gltf.Accessor
}

// Finalize concatenates the regions and closes the packer. It fails with
// ErrNoData when no coordinates were packed.
func (p *Packer) Finalize() (*Layout, error) {
	if p.finalized {
		return nil, ErrFinalized
	}
	p.finalized = true

	if p.coords.Len() == 0 {
		return nil, ErrNoData
	}

	p.indices.pad(4)
	indexLen := uint32(p.indices.Len())
	coordLen := uint32(p.coords.Len())

	data := make([]byte, 0, indexLen+coordLen)
	data = append(data, p.indices.Bytes()...)
	data = append(data, p.coords.Bytes()...)

	return &Layout{
		Buffer: &gltf.Buffer{
			ByteLength: uint32(len(data)),
			Data:       data,
		},
		BufferViews: []*gltf.BufferView{
			{
				Buffer:     0,
				ByteOffset: 0,
				ByteLength: indexLen,
				Target:     gltf.TargetElementArrayBuffer,
			},
			{
				Buffer:     0,
				ByteOffset: indexLen,
				ByteLength: coordLen,
				ByteStride: vec3Stride,
				Target:     gltf.TargetArrayBuffer,
			},
		},
		Accessors: p.accessors,
	}, nil
}

// Apply installs the layout into doc, replacing its buffers, views and accessors.
func (l *Layout) Apply(doc *gltf.Document) {
	doc.Buffers = []*gltf.Buffer{l.Buffer}
	doc.BufferViews = l.BufferViews
	doc.Accessors = l.Accessors
}
