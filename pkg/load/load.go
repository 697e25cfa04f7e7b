// Package load reads exported glTF files back into their node and scene
// metadata records, and rewrites them with embedded or external buffers.
package load

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"go.uber.org/zap"

	"github.com/Faultbox/bldgltf/pkg/extras"
)

// ErrNoScene is returned for documents without a scene.
var ErrNoScene = errors.New("document has no scene")

// File is the metadata recovered from an exported document. Geometry is
// not reconstructed.
type File struct {
	Nodes    []extras.NodeExtras
	Scene    extras.SceneExtras
	Document *gltf.Document
}

// Node returns the record of the named surface.
func (f *File) Node(name string) (extras.NodeExtras, bool) {
	for _, n := range f.Nodes {
		if n.Name == name {
			return n, true
		}
	}
	return extras.NodeExtras{}, false
}

// Option configures loading.
type Option func(*options)

type options struct {
	log *zap.Logger
}

// WithLogger routes parse diagnostics to log.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) { o.log = log }
}

func apply(opts []Option) options {
	o := options{log: zap.NewNop()}
	for _, fn := range opts {
		fn(&o)
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}
	return o
}

// Load opens a .gltf or .glb file and parses its extras.
func Load(path string, opts ...Option) (*File, error) {
	o := apply(opts)

	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return fromDocument(doc, o.log.With(zap.String("file", filepath.Base(path))))
}

// FromDocument parses the extras of an in-memory document.
func FromDocument(doc *gltf.Document, opts ...Option) (*File, error) {
	return fromDocument(doc, apply(opts).log)
}

func fromDocument(doc *gltf.Document, log *zap.Logger) (*File, error) {
	switch len(doc.Scenes) {
	case 0:
		return nil, ErrNoScene
	case 1:
	default:
		log.Warn("document has more than one scene, using the first", zap.Int("scenes", len(doc.Scenes)))
	}

	f := &File{
		Document: doc,
		Scene:    extras.ParseSceneExtras(doc.Scenes[0].Extras, log.With(zap.String("scene", doc.Scenes[0].Name))),
	}

	// node 0 is the coordinate system root
	if len(doc.Nodes) > 1 {
		for _, n := range doc.Nodes[1:] {
			f.Nodes = append(f.Nodes, extras.ParseNodeExtras(n.Extras, log.With(zap.String("node", n.Name))))
		}
	}
	return f, nil
}

// Outputs names the files written by Convert.
type Outputs struct {
	NonEmbedded string
	Buffers     []string
	Embedded    string
}

// Convert rewrites path into outDir twice: <base>_nonembedded.gltf with
// external .bin buffers and <base>_embedded.gltf with data URI buffers.
// An empty outDir writes next to the input.
func Convert(path, outDir string, opts ...Option) (Outputs, error) {
	o := apply(opts)
	var out Outputs

	doc, err := gltf.Open(path)
	if err != nil {
		return out, fmt.Errorf("opening %s: %w", path, err)
	}
	if len(doc.Scenes) == 0 {
		return out, ErrNoScene
	}

	if outDir == "" {
		outDir = filepath.Dir(path)
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return out, err
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	for i, b := range doc.Buffers {
		name := base + "_nonembedded.bin"
		if i > 0 {
			name = fmt.Sprintf("%s_nonembedded_%d.bin", base, i)
		}
		b.URI = name
		out.Buffers = append(out.Buffers, filepath.Join(outDir, name))
	}
	out.NonEmbedded = filepath.Join(outDir, base+"_nonembedded.gltf")
	if err := gltf.Save(doc, out.NonEmbedded); err != nil {
		return out, fmt.Errorf("writing %s: %w", out.NonEmbedded, err)
	}
	o.log.Info("wrote non-embedded gltf", zap.String("path", out.NonEmbedded), zap.Int("buffers", len(doc.Buffers)))

	for _, b := range doc.Buffers {
		b.EmbeddedResource()
	}
	out.Embedded = filepath.Join(outDir, base+"_embedded.gltf")
	if err := gltf.Save(doc, out.Embedded); err != nil {
		return out, fmt.Errorf("writing %s: %w", out.Embedded, err)
	}
	o.log.Info("wrote embedded gltf", zap.String("path", out.Embedded))

	return out, nil
}
