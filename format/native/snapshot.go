package native

import (
	"encoding/base64"
	"os"
	"path/filepath"

	serr "stof/errors"
	"stof/graph"
	"stof/value"
)

// SnapshotFormat ("stofbin") is the opaque binary native format spec §4.9
// describes: a graph.Graph snapshot (package graph's GobEncode/GobDecode)
// that preserves node and data ids, so references recorded elsewhere (a
// Prototype's DefNode, an Obj-kind field value) still resolve on reload.
// asName/node scoping doesn't apply -- a snapshot is always the whole
// graph -- collisions on import are resolved the same way Graph.Absorb
// resolves any merge (spec §4.9's closing paragraph: "on merge, collisions
// are rewritten by remapping collided ids").
type SnapshotFormat struct{}

func NewSnapshot() *SnapshotFormat { return &SnapshotFormat{} }

func (f *SnapshotFormat) Name() string        { return "stofbin" }
func (f *SnapshotFormat) ContentType() string { return "application/x-stof-snapshot" }

func (f *SnapshotFormat) HeaderImport(g *graph.Graph, self value.NodeID, contentType string, data []byte, asName string) (value.NodeID, *serr.Error) {
	return f.importSnapshot(g, data)
}

// StringImport accepts a base64 encoding of the snapshot bytes, the form a
// caller gets back from ExportString; raw non-UTF8 snapshot bytes stuffed
// directly into a Go string would round-trip too (Go strings are just
// byte sequences) but base64 is what export produces, so decode that first.
func (f *SnapshotFormat) StringImport(g *graph.Graph, self value.NodeID, src string, asName string) (value.NodeID, *serr.Error) {
	data, err := base64.StdEncoding.DecodeString(src)
	if err != nil {
		data = []byte(src)
	}
	return f.importSnapshot(g, data)
}

func (f *SnapshotFormat) FileImport(g *graph.Graph, self value.NodeID, path string, ext string, asName string) (value.NodeID, *serr.Error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return 0, serr.Wrap(0, serr.KindFilesystem, err)
	}
	return f.importSnapshot(g, data)
}

func (f *SnapshotFormat) importSnapshot(g *graph.Graph, data []byte) (value.NodeID, *serr.Error) {
	var other graph.Graph
	if err := other.GobDecode(data); err != nil {
		return 0, serr.Wrap(0, serr.Fmt("stofbin"), err)
	}
	g.Absorb(&other)
	return g.MainRoot(), nil
}

func (f *SnapshotFormat) ExportString(g *graph.Graph, node value.NodeID, hasNode bool, pretty bool) (string, *serr.Error) {
	b, err := f.ExportBytes(g, node, hasNode)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// ExportBytes snapshots the entire graph; node/hasNode are accepted to
// satisfy the Format interface but ignored, since a native snapshot is
// always whole-graph (spec §4.9).
func (f *SnapshotFormat) ExportBytes(g *graph.Graph, node value.NodeID, hasNode bool) ([]byte, *serr.Error) {
	data, err := g.GobEncode()
	if err != nil {
		return nil, serr.Wrap(0, serr.Fmt("stofbin"), err)
	}
	return data, nil
}
