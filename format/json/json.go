// Package json implements the Stof "json" format plug-in (spec §4.9),
// built on the standard library's encoding/json the way the teacher
// already relies on it pervasively for model.Result/model.Config.
package json

import (
	"encoding/json"
	"os"
	"path/filepath"

	serr "stof/errors"
	"stof/format"
	"stof/graph"
	"stof/value"
)

// typeHintKey is the opt-in JSON round-tripping convention for user-type
// names (SPEC_FULL.md §12.3, grounded in original_source/src/json/
// import.rs and export.rs), enabled per-Format instance via WithTypeHints.
const typeHintKey = "__stof_type__"

// Format is the JSON format plug-in. The zero value is usable; construct
// with WithTypeHints to enable __stof_type__ round-tripping.
type Format struct {
	typeHints bool
}

// New returns the default JSON format (no type-hint round-tripping).
func New() *Format { return &Format{} }

// WithTypeHints returns a JSON format that writes/reads __stof_type__ on
// every exported/imported object carrying a user-defined Prototype.
func WithTypeHints() *Format { return &Format{typeHints: true} }

func (f *Format) Name() string        { return "json" }
func (f *Format) ContentType() string { return "application/json" }

func (f *Format) HeaderImport(g *graph.Graph, self value.NodeID, contentType string, data []byte, asName string) (value.NodeID, *serr.Error) {
	return f.StringImport(g, self, string(data), asName)
}

func (f *Format) StringImport(g *graph.Graph, self value.NodeID, src string, asName string) (value.NodeID, *serr.Error) {
	var tree interface{}
	if err := json.Unmarshal([]byte(src), &tree); err != nil {
		return 0, serr.Wrap(0, serr.Fmt("json"), err)
	}
	target, serr2 := format.ResolveImportTarget(g, self, asName)
	if serr2 != nil {
		return 0, serr2
	}
	if serr3 := format.DecodeTree(g, target, tree); serr3 != nil {
		return 0, serr3
	}
	if f.typeHints {
		resolveTypeHints(g, target)
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

func (f *Format) ExportString(g *graph.Graph, node value.NodeID, hasNode bool, pretty bool) (string, *serr.Error) {
	if !hasNode {
		node = g.MainRoot()
	}
	tree := format.EncodeTree(g, node)
	if f.typeHints {
		tree = addTypeHints(g, node, tree)
	}
	var out []byte
	var err error
	if pretty {
		out, err = json.MarshalIndent(tree, "", "  ")
	} else {
		out, err = json.Marshal(tree)
	}
	if err != nil {
		return "", serr.Wrap(0, serr.Fmt("json"), err)
	}
	return string(out), nil
}

func (f *Format) ExportBytes(g *graph.Graph, node value.NodeID, hasNode bool) ([]byte, *serr.Error) {
	s, err := f.ExportString(g, node, hasNode, false)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// addTypeHints walks the already-encoded tree in lockstep with the graph,
// stamping __stof_type__ onto every object whose node carries a Prototype,
// including array-of-objects elements (matched back to their source node
// by re-walking the same field-then-children order EncodeTree used).
func addTypeHints(g *graph.Graph, node value.NodeID, tree interface{}) interface{} {
	m, ok := tree.(map[string]interface{})
	if !ok {
		return tree
	}
	if proto, ok := g.PrototypeOf(node); ok {
		m[typeHintKey] = proto.TypeName
	}
	referenced := make(map[value.NodeID]bool)
	for _, f := range g.FieldsOf(node) {
		if !f.Exported() {
			continue
		}
		arr, isArrayOfObj := arrayOfObjectsFrom(f.Value)
		if !isArrayOfObj {
			continue
		}
		out, ok := m[f.Name].([]interface{})
		if !ok {
			continue
		}
		for i, item := range arr {
			referenced[item.Obj] = true
			if i < len(out) {
				out[i] = addTypeHints(g, item.Obj, out[i])
			}
		}
	}
	n, ok := g.Node(node)
	if !ok {
		return m
	}
	for _, cid := range n.Children {
		if referenced[cid] {
			continue
		}
		cn, ok := g.Node(cid)
		if !ok {
			continue
		}
		if child, ok := m[cn.Name]; ok {
			m[cn.Name] = addTypeHints(g, cid, child)
		}
	}
	return m
}

func arrayOfObjectsFrom(v value.Value) ([]value.Value, bool) {
	if v.Kind != value.KindList || v.List == nil || len(*v.List) == 0 {
		return nil, false
	}
	for _, item := range *v.List {
		if item.Kind != value.KindObj {
			return nil, false
		}
	}
	return *v.List, true
}

// resolveTypeHints walks node's freshly-decoded subtree, promoting every
// "__stof_type__" field format.DecodeTree left behind into a real
// Prototype attachment (spec §4.8), looked up by name against the
// document's already-declared types, then removes the marker field so it
// does not also surface as ordinary document data.
func resolveTypeHints(g *graph.Graph, node value.NodeID) {
	if _, f, ok := g.FieldByName(node, typeHintKey); ok && f.Value.Kind == value.KindStr {
		if defNode, ok := g.TypeDef(f.Value.S); ok {
			g.PutData(node, &graph.Prototype{TypeName: f.Value.S, DefNode: defNode})
		}
		g.RemoveField(node, typeHintKey)
	}
	n, ok := g.Node(node)
	if !ok {
		return
	}
	for _, cid := range n.Children {
		resolveTypeHints(g, cid)
	}
}
