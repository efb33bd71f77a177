// Package yaml implements the Stof "yaml" format plug-in (spec §4.9)
// using gopkg.in/yaml.v3.
package yaml

import (
	"fmt"
	"os"
	"path/filepath"

	yamlv3 "gopkg.in/yaml.v3"

	serr "stof/errors"
	"stof/format"
	"stof/graph"
	"stof/value"
)

type Format struct{}

func New() *Format { return &Format{} }

func (f *Format) Name() string        { return "yaml" }
func (f *Format) ContentType() string { return "application/yaml" }

func (f *Format) HeaderImport(g *graph.Graph, self value.NodeID, contentType string, data []byte, asName string) (value.NodeID, *serr.Error) {
	return f.StringImport(g, self, string(data), asName)
}

func (f *Format) StringImport(g *graph.Graph, self value.NodeID, src string, asName string) (value.NodeID, *serr.Error) {
	var tree interface{}
	if err := yamlv3.Unmarshal([]byte(src), &tree); err != nil {
		return 0, serr.Wrap(0, serr.Fmt("yaml"), err)
	}
	target, serr2 := format.ResolveImportTarget(g, self, asName)
	if serr2 != nil {
		return 0, serr2
	}
	if serr3 := format.DecodeTree(g, target, normalize(tree)); serr3 != nil {
		return 0, serr3
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
	out, err := yamlv3.Marshal(tree)
	if err != nil {
		return "", serr.Wrap(0, serr.Fmt("yaml"), err)
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

// normalize recursively converts yaml.v3's occasional map[interface{}]interface{}
// (e.g. from merge keys or non-string map keys) into map[string]interface{}
// so format.DecodeTree's type switch recognizes it.
func normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}
		return out
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[toString(k)] = normalize(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	default:
		return v
	}
}

func toString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
