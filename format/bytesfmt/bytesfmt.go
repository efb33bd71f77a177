// Package bytesfmt implements the Stof "bytes" format plug-in (spec
// §4.9): a raw byte blob imported/exported as a single field, the binary
// analogue of format/text.
package bytesfmt

import (
	"os"
	"path/filepath"

	serr "stof/errors"
	"stof/format"
	"stof/graph"
	"stof/value"
)

const fieldName = "bytes"

type Format struct{}

func New() *Format { return &Format{} }

func (f *Format) Name() string        { return "bytes" }
func (f *Format) ContentType() string { return "application/octet-stream" }

func (f *Format) HeaderImport(g *graph.Graph, self value.NodeID, contentType string, data []byte, asName string) (value.NodeID, *serr.Error) {
	return f.importBytes(g, self, data, asName)
}

func (f *Format) StringImport(g *graph.Graph, self value.NodeID, src string, asName string) (value.NodeID, *serr.Error) {
	return f.importBytes(g, self, []byte(src), asName)
}

func (f *Format) importBytes(g *graph.Graph, self value.NodeID, data []byte, asName string) (value.NodeID, *serr.Error) {
	target, serr2 := format.ResolveImportTarget(g, self, asName)
	if serr2 != nil {
		return 0, serr2
	}
	if _, f, ok := g.FieldByName(target, fieldName); ok {
		f.Set(value.Blob(data))
	} else if _, err := g.PutData(target, graph.NewField(fieldName, value.Blob(data))); err != nil {
		return 0, serr.Wrap(0, serr.KindObjGet, err)
	}
	return target, nil
}

func (f *Format) FileImport(g *graph.Graph, self value.NodeID, path string, ext string, asName string) (value.NodeID, *serr.Error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return 0, serr.Wrap(0, serr.KindFilesystem, err)
	}
	return f.importBytes(g, self, data, asName)
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
	if _, field, ok := g.FieldByName(node, fieldName); ok && field.Value.Kind == value.KindBlob {
		return field.Value.Blob, nil
	}
	return nil, nil
}
