// Package doc implements the Document API (spec §6): the facade wrapping
// a Graph, an interpreter Scheduler, the library and format registries,
// and a RuntimeConfig, the way original_source's SDoc ties the same
// pieces together behind one type.
//
// library.Host is implemented by the unexported hostAdapter type (see
// host.go), not by Document itself: the Host interface and the Document
// API share method names (StringImport, StringExport, ...) with
// different signatures at each layer, so one Go type cannot be both.
// hostAdapter is the thin sidecar Document hands to its Scheduler and
// native format instead.
package doc

import (
	"fmt"
	"io"
	"os"
	"sync"

	serr "stof/errors"
	"stof/format"
	"stof/format/bytesfmt"
	"stof/format/json"
	"stof/format/native"
	"stof/format/text"
	"stof/format/toml"
	"stof/format/urlencoded"
	"stof/format/xml"
	"stof/format/yaml"
	"stof/graph"
	"stof/interp"
	"stof/library"
	"stof/value"
)

// Document is a single Stof document: the graph, its interpreter
// scheduler, and the format/library registries it imports and runs
// against (spec §6).
type Document struct {
	Graph     *graph.Graph
	Scheduler *interp.Scheduler
	Libraries *library.Registry
	Formats   *format.Registry
	Config    *RuntimeConfig

	mu          sync.Mutex
	currentPID  uint64
	currentSelf value.NodeID

	out io.Writer
	dbg io.Writer
}

// New returns an empty Document with every built-in library and format
// installed (spec §6's "new() -> Doc"), using the default sequential
// node/data id allocator.
func New() *Document {
	return NewWithGraph(graph.New())
}

// NewWithGraph returns an empty Document backed by g instead of a fresh
// graph.New(), for callers that need an alternate id strategy — e.g.
// doc.NewWithGraph(graph.NewWithAllocator(graph.WithUUIDIDs())) wires up
// uuid-backed node/data ids end to end (spec §11's sequential-vs-uuid
// allocator choice).
func NewWithGraph(g *graph.Graph) *Document {
	d := &Document{
		Graph:     g,
		Libraries: library.Default(),
		Config:    DefaultRuntimeConfig(),
		out:       os.Stdout,
		dbg:       os.Stderr,
	}
	host := &hostAdapter{d: d}
	d.Scheduler = interp.NewScheduler(d.Graph, d.Libraries, host)
	d.Formats = format.NewRegistry()
	d.Formats.Register(json.WithTypeHints())
	d.Formats.Register(toml.New())
	d.Formats.Register(yaml.New())
	d.Formats.Register(xml.New())
	d.Formats.Register(urlencoded.New())
	d.Formats.Register(text.New())
	d.Formats.Register(bytesfmt.New())
	d.Formats.Register(native.New(host, d.Libraries))
	d.Formats.Register(native.NewSnapshot())
	return d
}

// FromSource parses src in the named format into a fresh Document (spec
// §6's "from_source(src, format) -> Doc | Error").
func FromSource(src, fmtName string) (*Document, *serr.Error) {
	d := New()
	if _, err := d.StringImport(src, fmtName, ""); err != nil {
		return nil, err
	}
	return d, nil
}

// FromFile reads path and imports it as format into a fresh Document
// (spec §6's "from_file(path, format) -> Doc | Error"). format == ""
// infers from the file extension.
func FromFile(path, fmtName string) (*Document, *serr.Error) {
	return FromFileWithGraph(graph.New(), path, fmtName)
}

// FromFileWithGraph is FromFile against a caller-supplied graph, letting a
// caller (e.g. a CLI flag) opt into graph.NewWithAllocator(graph.WithUUIDIDs())
// instead of the default sequential allocator.
func FromFileWithGraph(g *graph.Graph, path, fmtName string) (*Document, *serr.Error) {
	d := NewWithGraph(g)
	if fmtName == "" {
		fmtName = inferFormat(path)
	}
	f, ok := d.Formats.Get(fmtName)
	if !ok {
		return nil, serr.New(0, serr.Fmt(fmtName), "unknown format %q", fmtName)
	}
	if _, ferr := f.FileImport(d.Graph, d.Graph.MainRoot(), path, ext(path), ""); ferr != nil {
		return nil, ferr
	}
	return d, nil
}

// FromBytes imports bytes in the named format into a fresh Document
// (spec §6's "from_bytes(bytes, format) -> Doc | Error").
func FromBytes(data []byte, fmtName string) (*Document, *serr.Error) {
	d := New()
	if _, err := d.BinaryImport(data, fmtName, ""); err != nil {
		return nil, err
	}
	return d, nil
}

func inferFormat(path string) string {
	e := ext(path)
	switch e {
	case "json":
		return "json"
	case "toml":
		return "toml"
	case "yaml", "yml":
		return "yaml"
	case "xml":
		return "xml"
	case "stofbin":
		return "stofbin"
	case "txt":
		return "text"
	default:
		return "stof"
	}
}

func ext(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			return path[i+1:]
		}
		if path[i] == '/' {
			break
		}
	}
	return ""
}

// Parse imports src through the native "stof" format, rooted at node (or
// the main root if node is unset) -- spec §6's "parse(src, node?) ->
// bool | Error".
func (d *Document) Parse(src string, node value.NodeID, hasNode bool) (bool, *serr.Error) {
	f, ok := d.Formats.Get("stof")
	if !ok {
		return false, serr.New(0, serr.Fmt("stof"), "unknown format %q", "stof")
	}
	self, asName := d.currentSelfOrMain(), "root"
	if hasNode {
		self, asName = node, "self"
	}
	if _, err := f.StringImport(d.Graph, self, src, asName); err != nil {
		return false, err
	}
	return true, nil
}

// StringImport parses src in the named format and merges it into the
// graph at asName (spec §6's "string_import(src, format, node?)").
func (d *Document) StringImport(src, fmtName, asName string) (value.NodeID, *serr.Error) {
	f, ok := d.Formats.Get(fmtName)
	if !ok {
		return 0, serr.New(0, serr.Fmt(fmtName), "unknown format %q", fmtName)
	}
	return f.StringImport(d.Graph, d.currentSelfOrMain(), src, asName)
}

// BinaryImport imports bytes in the named format and merges them into the
// graph at asName (spec §6's "binary_import(bytes, format, node?)").
func (d *Document) BinaryImport(data []byte, fmtName, asName string) (value.NodeID, *serr.Error) {
	f, ok := d.Formats.Get(fmtName)
	if !ok {
		return 0, serr.New(0, serr.Fmt(fmtName), "unknown format %q", fmtName)
	}
	self := d.currentSelfOrMain()
	return f.HeaderImport(d.Graph, self, f.ContentType(), data, asName)
}

// ObjectImport walks a generic Go tree (map[string]interface{}/
// []interface{}/scalars) into the graph at asName without going through a
// registered Format's codec (spec §6's "object_import(jsonLike, node?)").
func (d *Document) ObjectImport(tree interface{}, asName string) (value.NodeID, *serr.Error) {
	self := d.currentSelfOrMain()
	target, err := format.ResolveImportTarget(d.Graph, self, asName)
	if err != nil {
		return 0, err
	}
	if err := format.DecodeTree(d.Graph, target, tree); err != nil {
		return 0, err
	}
	return target, nil
}

// StringExport renders node (or the main root) as the named format's
// textual representation (spec §6's "string_export(format, node?)").
func (d *Document) StringExport(fmtName string, node value.NodeID, hasNode, pretty bool) (string, *serr.Error) {
	f, ok := d.Formats.Get(fmtName)
	if !ok {
		return "", serr.New(0, serr.Fmt(fmtName), "unknown format %q", fmtName)
	}
	return f.ExportString(d.Graph, node, hasNode, pretty)
}

// BinaryExport renders node as the named format's binary representation
// (spec §6's "binary_export(format, node?)").
func (d *Document) BinaryExport(fmtName string, node value.NodeID, hasNode bool) ([]byte, *serr.Error) {
	f, ok := d.Formats.Get(fmtName)
	if !ok {
		return nil, serr.New(0, serr.Fmt(fmtName), "unknown format %q", fmtName)
	}
	return f.ExportBytes(d.Graph, node, hasNode)
}

func (d *Document) currentSelfOrMain() value.NodeID {
	d.mu.Lock()
	self := d.currentSelf
	d.mu.Unlock()
	if self != 0 {
		return self
	}
	return d.Graph.MainRoot()
}

func (d *Document) String() string {
	return fmt.Sprintf("Document(nodes at %q)", d.Graph.Path(d.Graph.MainRoot()))
}
