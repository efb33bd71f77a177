// Package toml implements the Stof "toml" format plug-in (spec §4.9),
// using github.com/BurntSushi/toml (SPEC_FULL.md §11: the teacher never
// parses TOML, this is the closest idiomatic ecosystem choice, same tier
// as its gopkg.in/yaml.v3 use).
package toml

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	serr "stof/errors"
	"stof/format"
	"stof/graph"
	"stof/value"
)

type Format struct{}

func New() *Format { return &Format{} }

func (f *Format) Name() string        { return "toml" }
func (f *Format) ContentType() string { return "application/toml" }

func (f *Format) HeaderImport(g *graph.Graph, self value.NodeID, contentType string, data []byte, asName string) (value.NodeID, *serr.Error) {
	return f.StringImport(g, self, string(data), asName)
}

func (f *Format) StringImport(g *graph.Graph, self value.NodeID, src string, asName string) (value.NodeID, *serr.Error) {
	tree := map[string]interface{}{}
	if _, err := toml.Decode(src, &tree); err != nil {
		return 0, serr.Wrap(0, serr.Fmt("toml"), err)
	}
	target, serr2 := format.ResolveImportTarget(g, self, asName)
	if serr2 != nil {
		return 0, serr2
	}
	if serr3 := format.DecodeTree(g, target, tree); serr3 != nil {
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
	var buf strings.Builder
	if err := toml.NewEncoder(&buf).Encode(tree); err != nil {
		return "", serr.Wrap(0, serr.Fmt("toml"), err)
	}
	return buf.String(), nil
}

func (f *Format) ExportBytes(g *graph.Graph, node value.NodeID, hasNode bool) ([]byte, *serr.Error) {
	s, err := f.ExportString(g, node, hasNode, false)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}
