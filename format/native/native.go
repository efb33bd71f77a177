// Package native implements the Stof native format plug-ins (spec §4.9's
// closing paragraph): Format is the "stof" text dialect std.parse and
// std.stringify default to, and SnapshotFormat ("stofbin") is the opaque,
// id-preserving binary snapshot of the whole graph used for persisted
// state (spec §6 "Persisted state").
//
// Unlike the tree-shaped formats (json/toml/yaml/xml/urlencoded), native
// text import runs actual language source -- field/type/function
// declarations, top-level statements -- so it needs the interpreter, not
// just the graph<->tree walk: StringImport spawns a Process on a private
// Scheduler (sharing the caller's Graph, Host and Libraries) and drives it
// to completion before returning.
package native

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	serr "stof/errors"
	"stof/format"
	"stof/graph"
	"stof/interp"
	"stof/library"
	"stof/parser"
	"stof/value"
)

// Format is the native "stof" format. It needs a Host and a Library
// Registry (unlike the tree-shaped formats) because imported source can
// call library functions and spawn/await processes; package doc wires it
// with the same Host/Libraries it gives the rest of the runtime.
type Format struct {
	Host      library.Host
	Libraries *library.Registry
}

// New returns a native format plug-in bound to the given host and library
// registry. Both must be the same ones the owning doc.Document's own
// interp.Scheduler uses, so imported source calls library functions and
// sees files/time/etc. the same way top-level code does.
func New(host library.Host, libs *library.Registry) *Format {
	return &Format{Host: host, Libraries: libs}
}

func (f *Format) Name() string        { return "stof" }
func (f *Format) ContentType() string { return "text/x-stof" }

func (f *Format) HeaderImport(g *graph.Graph, self value.NodeID, contentType string, data []byte, asName string) (value.NodeID, *serr.Error) {
	return f.StringImport(g, self, string(data), asName)
}

// StringImport parses src as Stof source and runs it to completion rooted
// at the asName-resolved target node.
func (f *Format) StringImport(g *graph.Graph, self value.NodeID, src string, asName string) (value.NodeID, *serr.Error) {
	target, ferr := format.ResolveImportTarget(g, self, asName)
	if ferr != nil {
		return 0, ferr
	}
	var opts []parser.Option
	if imp, ok := f.Host.(parser.Importer); ok {
		opts = append(opts, parser.WithImporter(imp))
	}
	p, perr := parser.New(src, opts...)
	if perr != nil {
		return 0, perr
	}
	stream, perr := p.ParseDocument()
	if perr != nil {
		return 0, perr
	}
	sched := interp.NewScheduler(g, f.Libraries, f.Host)
	pid := sched.Spawn(stream, target)
	for !sched.AllDone() {
		sched.Run()
	}
	proc, _ := sched.Process(pid)
	if proc != nil && proc.Err != nil {
		return 0, proc.Err
	}
	return target, nil
}

func (f *Format) FileImport(g *graph.Graph, self value.NodeID, path string, ext string, asName string) (value.NodeID, *serr.Error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return 0, serr.Wrap(0, serr.KindFilesystem, err)
	}
	return f.StringImport(g, self, string(data), asName)
}

// ExportString renders a best-effort textual reconstruction of node's
// fields as Stof field declarations; functions and nested types are not
// re-rendered as source text (round-tripping those exactly goes through
// SnapshotFormat's binary snapshot instead).
func (f *Format) ExportString(g *graph.Graph, node value.NodeID, hasNode bool, pretty bool) (string, *serr.Error) {
	if !hasNode {
		node = g.MainRoot()
	}
	return renderFields(g, node), nil
}

func (f *Format) ExportBytes(g *graph.Graph, node value.NodeID, hasNode bool) ([]byte, *serr.Error) {
	s, err := f.ExportString(g, node, hasNode, false)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// renderFields writes node's exported fields (and nested object fields, by
// recursing into child nodes) as `name: value;` declarations, sorted by
// name for deterministic output.
func renderFields(g *graph.Graph, node value.NodeID) string {
	var b strings.Builder
	renderNodeFields(g, node, &b)
	return b.String()
}

func renderNodeFields(g *graph.Graph, node value.NodeID, b *strings.Builder) {
	fields := g.FieldsOf(node)
	sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
	for _, fld := range fields {
		if !fld.Exported() {
			continue
		}
		fmt.Fprintf(b, "%s: %s;\n", fld.Name, fld.Value.String())
	}
	n, ok := g.Node(node)
	if !ok {
		return
	}
	for _, cid := range n.Children {
		cn, ok := g.Node(cid)
		if !ok {
			continue
		}
		fmt.Fprintf(b, "%s: {\n", cn.Name)
		renderNodeFields(g, cid, b)
		b.WriteString("}\n")
	}
}
