package doc

import (
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	serr "stof/errors"
	"stof/graph"
	"stof/instr"
	"stof/value"
)

// hostAdapter implements library.Host and library.CurrentSetter for a
// Document. It is a separate type rather than a set of methods on
// *Document itself because the Host interface and the Document API
// (spec §6) share names (StringImport, StringExport, ...) with
// different signatures -- the same name means two different things at
// the two layers, so they cannot both be methods of one Go type.
type hostAdapter struct {
	d *Document
}

func (h *hostAdapter) Self(pid uint64) (value.NodeID, bool) {
	if p, ok := h.d.Scheduler.Process(pid); ok {
		return p.Env.CurrentSelf()
	}
	h.d.mu.Lock()
	self, cur := h.d.currentSelf, h.d.currentPID
	h.d.mu.Unlock()
	if cur == pid && self != 0 {
		return self, true
	}
	return 0, false
}

func (h *hostAdapter) PID() uint64 {
	h.d.mu.Lock()
	defer h.d.mu.Unlock()
	return h.d.currentPID
}

// SetCurrent implements library.CurrentSetter: the Scheduler calls this
// immediately before every library dispatch so PID()/Self() (which carry
// no pid of their own on the Library.Call signature) can answer for
// whichever process is actually running.
func (h *hostAdapter) SetCurrent(pid uint64, self value.NodeID) {
	h.d.mu.Lock()
	h.d.currentPID = pid
	h.d.currentSelf = self
	h.d.mu.Unlock()
}

func (h *hostAdapter) FieldByName(node value.NodeID, name string) (value.Value, bool) {
	_, f, ok := h.d.Graph.FieldByName(node, name)
	if !ok || f.Private() {
		return value.Void(), false
	}
	return f.Value, true
}

func (h *hostAdapter) SetField(node value.NodeID, name string, v value.Value) error {
	if _, f, ok := h.d.Graph.FieldByName(node, name); ok {
		if f.Private() {
			return serr.New(h.PID(), serr.KindFieldPrivate, "field %q is private", name)
		}
		if !f.Set(v) {
			return serr.New(h.PID(), serr.KindFieldReadOnlySet, "field %q is read-only", name)
		}
		return nil
	}
	_, err := h.d.Graph.PutData(node, graph.NewField(name, v))
	return err
}

func (h *hostAdapter) RemoveField(node value.NodeID, name string) bool {
	return h.d.Graph.RemoveField(node, name)
}

func (h *hostAdapter) FieldNames(node value.NodeID) []string {
	fields := h.d.Graph.FieldsOf(node)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.Exported() {
			out = append(out, f.Name)
		}
	}
	return out
}

func (h *hostAdapter) CallFunction(pid uint64, node value.NodeID, name string, args []value.Value) (value.Value, *serr.Error) {
	return h.d.Scheduler.CallFunction(pid, node, name, args)
}

func (h *hostAdapter) FunctionNames(node value.NodeID) []string {
	fns := h.d.Graph.FunctionsOf(node)
	out := make([]string, 0, len(fns))
	for _, fn := range fns {
		out = append(out, fn.Name)
	}
	return out
}

func (h *hostAdapter) NodePath(node value.NodeID) string { return h.d.Graph.Path(node) }

func (h *hostAdapter) NodeName(node value.NodeID) string {
	n, ok := h.d.Graph.Node(node)
	if !ok {
		return ""
	}
	return n.Name
}

func (h *hostAdapter) ChildrenOf(node value.NodeID) []value.NodeID {
	n, ok := h.d.Graph.Node(node)
	if !ok {
		return nil
	}
	return n.Children
}

func (h *hostAdapter) ParentOf(node value.NodeID) (value.NodeID, bool) {
	n, ok := h.d.Graph.Node(node)
	if !ok || !n.HasParent {
		return 0, false
	}
	return n.Parent, true
}

func (h *hostAdapter) MoveNode(node, newParent value.NodeID) error {
	return h.d.Graph.MoveNode(node, newParent, false, "")
}

func (h *hostAdapter) RemoveNode(node value.NodeID) { h.d.Graph.RemoveNode(node) }

func (h *hostAdapter) InstanceOf(node value.NodeID, typeName string) bool {
	return h.d.Graph.InstanceOf(node, typeName)
}

func (h *hostAdapter) TypeName(node value.NodeID) (string, bool) {
	proto, ok := h.d.Graph.PrototypeOf(node)
	if !ok {
		return "", false
	}
	return proto.TypeName, true
}

func (h *hostAdapter) StringImport(pid uint64, fmtName, src, asPath string) *serr.Error {
	f, ok := h.d.Formats.Get(fmtName)
	if !ok {
		return serr.New(pid, serr.Fmt(fmtName), "unknown format %q", fmtName)
	}
	self, _ := h.Self(pid)
	if self == 0 {
		self = h.d.Graph.MainRoot()
	}
	_, err := f.StringImport(h.d.Graph, self, src, asPath)
	return err
}

func (h *hostAdapter) StringExport(pid uint64, fmtName string, node value.NodeID, pretty bool) (string, *serr.Error) {
	f, ok := h.d.Formats.Get(fmtName)
	if !ok {
		return "", serr.New(pid, serr.Fmt(fmtName), "unknown format %q", fmtName)
	}
	return f.ExportString(h.d.Graph, node, node != 0, pretty)
}

func (h *hostAdapter) BytesExport(pid uint64, fmtName string, node value.NodeID) ([]byte, *serr.Error) {
	f, ok := h.d.Formats.Get(fmtName)
	if !ok {
		return nil, serr.New(pid, serr.Fmt(fmtName), "unknown format %q", fmtName)
	}
	return f.ExportBytes(h.d.Graph, node, node != 0)
}

func (h *hostAdapter) HasFormat(fmtName string) bool { return h.d.Formats.Has(fmtName) }

func (h *hostAdapter) Formats() []string { return h.d.Formats.Names() }

func (h *hostAdapter) Print(msg string) {
	if h.d.out != nil {
		h.d.out.Write([]byte(msg + "\n"))
	}
}

func (h *hostAdapter) Debug(msg string) {
	if h.d.dbg != nil {
		h.d.dbg.Write([]byte(msg + "\n"))
	}
}

func (h *hostAdapter) FileRead(path string) (string, *serr.Error) {
	if !h.d.Config.AllowFS {
		return "", serr.New(h.PID(), serr.KindFilesystem, "filesystem access disabled")
	}
	clean, err := h.d.Config.resolvePath(path)
	if err != nil {
		return "", serr.Wrap(h.PID(), serr.KindFilesystem, err)
	}
	data, rerr := os.ReadFile(clean)
	if rerr != nil {
		return "", serr.Wrap(h.PID(), serr.KindFilesystem, rerr)
	}
	return string(data), nil
}

func (h *hostAdapter) FileWrite(path, contents string) *serr.Error {
	if !h.d.Config.AllowFS {
		return serr.New(h.PID(), serr.KindFilesystem, "filesystem access disabled")
	}
	clean, err := h.d.Config.resolvePath(path)
	if err != nil {
		return serr.Wrap(h.PID(), serr.KindFilesystem, err)
	}
	if wErr := os.WriteFile(clean, []byte(contents), 0o644); wErr != nil {
		return serr.Wrap(h.PID(), serr.KindFilesystem, wErr)
	}
	return nil
}

func (h *hostAdapter) FileGlob(pattern string) ([]string, *serr.Error) {
	if !h.d.Config.AllowFS {
		return nil, serr.New(h.PID(), serr.KindFilesystem, "filesystem access disabled")
	}
	base := h.d.Config.BaseDir
	if base == "" {
		base = "."
	}
	full := filepath.Join(base, pattern)
	matches, err := doublestar.FilepathGlob(full)
	if err != nil {
		return nil, serr.Wrap(h.PID(), serr.KindFilesystem, err)
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		rel, rerr := filepath.Rel(base, m)
		if rerr != nil {
			rel = m
		}
		out = append(out, filepath.ToSlash(rel))
	}
	return out, nil
}

// Import implements parser.Importer: `import "path" [as name];`
// (SPEC_FULL.md §12.4) resolves path the same sandboxed way fs.read does,
// with a ".stof" extension assumed when path carries none.
func (h *hostAdapter) Import(path string) (string, error) {
	if filepath.Ext(path) == "" {
		path += ".stof"
	}
	src, err := h.FileRead(path)
	if err != nil {
		return "", err
	}
	return src, nil
}

func (h *hostAdapter) NowUnixMillis() int64 { return time.Now().UnixMilli() }

// SpawnProcess implements library.Host for a process-spawning library
// call. No built-in library currently calls it -- Spawn/Await are
// expressed as dedicated instructions compiled directly by the parser,
// not library calls -- it is kept on the interface for a future
// `std.spawn` convenience wrapper and is not yet exercised by any
// SPEC_FULL.md component.
func (h *hostAdapter) SpawnProcess(body interface{}, expected value.Type) uint64 {
	stream, ok := body.(instr.Stream)
	if !ok {
		return 0
	}
	self := h.d.currentSelfOrMain()
	return h.d.Scheduler.Spawn(stream, self)
}
