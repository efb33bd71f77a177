// Package format implements Stof's format-plug-in contract (spec §4.9):
// header/string/file import, string/bytes export, and the canonical
// graph<->tree mapping shared by the tree-shaped formats (JSON, TOML,
// YAML, XML, URL-encoded). The text and bytes formats do not walk a tree:
// they attach their whole content as a single field.
//
// Grounded in the teacher's internal/registry.Registry (name -> handle
// lookup, guarded by a mutex, with a construction-time Register call) and
// in original_source/src/format/mod.rs's Format trait, whose seven entry
// points (format_name, content_type, header_import, string_import,
// file_import, export_string, export_bytes) are carried over verbatim as
// the Go interface below.
package format

import (
	serr "stof/errors"
	"stof/graph"
	"stof/value"
)

// Format is one pluggable document format (spec §4.9).
type Format interface {
	// Name is the string used to select this format from library calls and
	// the Document API (e.g. "json", "toml", "stof").
	Name() string
	// ContentType is the MIME type this format's HeaderImport recognizes,
	// e.g. "application/json".
	ContentType() string

	// HeaderImport imports bytes whose format was named by a content-type
	// header rather than an explicit format string (spec §4.9); asName
	// routes the imported subtree per ResolveImportTarget.
	HeaderImport(g *graph.Graph, self value.NodeID, contentType string, data []byte, asName string) (value.NodeID, *serr.Error)
	// StringImport parses src and merges it into g, rooted per asName.
	StringImport(g *graph.Graph, self value.NodeID, src string, asName string) (value.NodeID, *serr.Error)
	// FileImport reads path (whose extension is ext) and imports it the
	// same way StringImport does.
	FileImport(g *graph.Graph, self value.NodeID, path string, ext string, asName string) (value.NodeID, *serr.Error)

	// ExportString renders node (or the main root, if hasNode is false) as
	// this format's textual representation.
	ExportString(g *graph.Graph, node value.NodeID, hasNode bool, pretty bool) (string, *serr.Error)
	// ExportBytes renders node the same way, as a binary representation
	// (for text formats, the UTF-8 bytes of ExportString).
	ExportBytes(g *graph.Graph, node value.NodeID, hasNode bool) ([]byte, *serr.Error)
}

// Registry is the set of installed formats, keyed by name, mirroring
// library.Registry's shape.
type Registry struct {
	formats      map[string]Format
	byContentType map[string]Format
}

func NewRegistry() *Registry {
	return &Registry{formats: make(map[string]Format), byContentType: make(map[string]Format)}
}

func (r *Registry) Register(f Format) {
	if f.Name() == "" {
		return
	}
	r.formats[f.Name()] = f
	if ct := f.ContentType(); ct != "" {
		r.byContentType[ct] = f
	}
}

func (r *Registry) Get(name string) (Format, bool) {
	f, ok := r.formats[name]
	return f, ok
}

func (r *Registry) ByContentType(contentType string) (Format, bool) {
	f, ok := r.byContentType[contentType]
	return f, ok
}

func (r *Registry) Has(name string) bool {
	_, ok := r.formats[name]
	return ok
}

func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.formats))
	for name := range r.formats {
		out = append(out, name)
	}
	return out
}

// ResolveImportTarget implements spec §4.9's asName routing: empty/"root"
// merges at the main root; "self"/"super" (and any dotted path starting
// with them) resolve relative to self; anything else is a dotted node path
// from the main root, with missing nodes ensured either way.
func ResolveImportTarget(g *graph.Graph, self value.NodeID, asName string) (value.NodeID, *serr.Error) {
	if asName == "" || asName == "root" {
		return g.MainRoot(), nil
	}
	start := g.MainRoot()
	if hasPrefix(asName, "self") || hasPrefix(asName, "super") {
		if self != 0 {
			start = self
		}
	}
	node, err := g.EnsurePath(start, asName)
	if err != nil {
		return 0, serr.Wrap(0, serr.KindObjGet, err)
	}
	return node, nil
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}
