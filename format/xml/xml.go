// Package xml implements the Stof "xml" format plug-in (spec §4.9) using
// github.com/clbanning/mxj/v2's tree-shaped XML<->map conversion, feeding
// the canonical graph walk the same way format/json and format/yaml do
// (SPEC_FULL.md §11).
package xml

import (
	"os"
	"path/filepath"

	"github.com/clbanning/mxj/v2"

	serr "stof/errors"
	"stof/format"
	"stof/graph"
	"stof/value"
)

type Format struct{}

func New() *Format { return &Format{} }

func (f *Format) Name() string        { return "xml" }
func (f *Format) ContentType() string { return "application/xml" }

func (f *Format) HeaderImport(g *graph.Graph, self value.NodeID, contentType string, data []byte, asName string) (value.NodeID, *serr.Error) {
	return f.bytesImport(g, self, data, asName)
}

func (f *Format) StringImport(g *graph.Graph, self value.NodeID, src string, asName string) (value.NodeID, *serr.Error) {
	return f.bytesImport(g, self, []byte(src), asName)
}

func (f *Format) bytesImport(g *graph.Graph, self value.NodeID, data []byte, asName string) (value.NodeID, *serr.Error) {
	m, err := mxj.NewMapXml(data)
	if err != nil {
		return 0, serr.Wrap(0, serr.Fmt("xml"), err)
	}
	target, serr2 := format.ResolveImportTarget(g, self, asName)
	if serr2 != nil {
		return 0, serr2
	}
	if serr3 := format.DecodeTree(g, target, map[string]interface{}(m)); serr3 != nil {
		return 0, serr3
	}
	return target, nil
}

func (f *Format) FileImport(g *graph.Graph, self value.NodeID, path string, ext string, asName string) (value.NodeID, *serr.Error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return 0, serr.Wrap(0, serr.KindFilesystem, err)
	}
	return f.bytesImport(g, self, data, asName)
}

func (f *Format) ExportString(g *graph.Graph, node value.NodeID, hasNode bool, pretty bool) (string, *serr.Error) {
	b, err := f.ExportBytes(g, node, hasNode)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (f *Format) ExportBytes(g *graph.Graph, node value.NodeID, hasNode bool) ([]byte, *serr.Error) {
	if !hasNode {
		node = g.MainRoot()
	}
	tree, _ := format.EncodeTree(g, node).(map[string]interface{})
	m := mxj.Map(tree)
	out, err := m.XmlIndent("", "  ")
	if err != nil {
		return nil, serr.Wrap(0, serr.Fmt("xml"), err)
	}
	return out, nil
}
