// Package text implements the Stof "text" format plug-in (spec §4.9): raw
// text imported/exported as a single field, reusing the same asName
// target-resolution rules as the tree-shaped formats.
package text

import (
	"os"
	"path/filepath"

	serr "stof/errors"
	"stof/format"
	"stof/graph"
	"stof/value"
)

// fieldName is the single field text import attaches content to.
const fieldName = "text"

type Format struct{}

func New() *Format { return &Format{} }

func (f *Format) Name() string        { return "text" }
func (f *Format) ContentType() string { return "text/plain" }

func (f *Format) HeaderImport(g *graph.Graph, self value.NodeID, contentType string, data []byte, asName string) (value.NodeID, *serr.Error) {
	return f.StringImport(g, self, string(data), asName)
}

func (f *Format) StringImport(g *graph.Graph, self value.NodeID, src string, asName string) (value.NodeID, *serr.Error) {
	target, serr2 := format.ResolveImportTarget(g, self, asName)
	if serr2 != nil {
		return 0, serr2
	}
	if _, f, ok := g.FieldByName(target, fieldName); ok {
		f.Set(value.Str(src))
	} else if _, err := g.PutData(target, graph.NewField(fieldName, value.Str(src))); err != nil {
		return 0, serr.Wrap(0, serr.KindObjGet, err)
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
	if _, field, ok := g.FieldByName(node, fieldName); ok {
		return field.Value.String(), nil
	}
	return "", nil
}

func (f *Format) ExportBytes(g *graph.Graph, node value.NodeID, hasNode bool) ([]byte, *serr.Error) {
	s, err := f.ExportString(g, node, hasNode, false)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}
