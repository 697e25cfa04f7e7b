package export

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
)

// IsBinaryPath reports whether path names a .glb container.
func IsBinaryPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".glb")
}

// WriteFile saves doc as JSON glTF with its buffer embedded, or as a
// binary .glb container when binary is set.
func WriteFile(doc *gltf.Document, path string, binary bool) error {
	if binary {
		restore := unembed(doc)
		defer restore()
		if err := gltf.SaveBinary(doc, path); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		return nil
	}
	if err := gltf.Save(doc, path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Encode writes doc to w in either form.
func Encode(w io.Writer, doc *gltf.Document, binary bool) error {
	enc := gltf.NewEncoder(w)
	enc.AsBinary = binary
	if binary {
		restore := unembed(doc)
		defer restore()
	}
	return enc.Encode(doc)
}

// unembed clears the first buffer's data URI so a binary container stores
// it in the BIN chunk.
func unembed(doc *gltf.Document) func() {
	if len(doc.Buffers) == 0 {
		return func() {}
	}
	b := doc.Buffers[0]
	uri := b.URI
	b.URI = ""
	return func() { b.URI = uri }
}
