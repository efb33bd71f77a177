// Package urlencoded implements the Stof "urlencoded" format plug-in
// (spec §4.9): flat `a=1&b.c=2`-style query strings, using the standard
// library's net/url for parsing/encoding and dotted keys to express
// nesting through the canonical graph<->tree walk.
package urlencoded

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	serr "stof/errors"
	"stof/format"
	"stof/graph"
	"stof/value"
)

type Format struct{}

func New() *Format { return &Format{} }

func (f *Format) Name() string        { return "urlencoded" }
func (f *Format) ContentType() string { return "application/x-www-form-urlencoded" }

func (f *Format) HeaderImport(g *graph.Graph, self value.NodeID, contentType string, data []byte, asName string) (value.NodeID, *serr.Error) {
	return f.StringImport(g, self, string(data), asName)
}

func (f *Format) StringImport(g *graph.Graph, self value.NodeID, src string, asName string) (value.NodeID, *serr.Error) {
	values, err := url.ParseQuery(src)
	if err != nil {
		return 0, serr.Wrap(0, serr.Fmt("urlencoded"), err)
	}
	tree := make(map[string]interface{})
	for key, vals := range values {
		var leaf interface{}
		if len(vals) == 1 {
			leaf = vals[0]
		} else {
			items := make([]interface{}, len(vals))
			for i, v := range vals {
				items[i] = v
			}
			leaf = items
		}
		assignDotted(tree, key, leaf)
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
	tree, _ := format.EncodeTree(g, node).(map[string]interface{})
	values := url.Values{}
	flatten("", tree, values)
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		for _, v := range values[k] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(k))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	return b.String(), nil
}

func (f *Format) ExportBytes(g *graph.Graph, node value.NodeID, hasNode bool) ([]byte, *serr.Error) {
	s, err := f.ExportString(g, node, hasNode, false)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// assignDotted writes leaf into tree at a possibly-nested dotted key,
// creating intermediate map[string]interface{} levels as needed.
func assignDotted(tree map[string]interface{}, key string, leaf interface{}) {
	segs := strings.Split(key, ".")
	cur := tree
	for _, seg := range segs[:len(segs)-1] {
		next, ok := cur[seg].(map[string]interface{})
		if !ok {
			next = make(map[string]interface{})
			cur[seg] = next
		}
		cur = next
	}
	cur[segs[len(segs)-1]] = leaf
}

// flatten is assignDotted's inverse for export, rendering nested maps back
// into dotted keys.
func flatten(prefix string, tree map[string]interface{}, out url.Values) {
	for k, v := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch vv := v.(type) {
		case map[string]interface{}:
			flatten(key, vv, out)
		case []interface{}:
			for _, item := range vv {
				out.Add(key, toStr(item))
			}
		default:
			out.Add(key, toStr(v))
		}
	}
}

func toStr(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}
