package graph

import (
	"encoding/binary"
	"sync"

	"github.com/google/uuid"

	"stof/value"
)

// uuidAllocator backs value.NodeID/value.DataID with random uuid.v4 values
// folded down to 64 bits, rather than a process-local sequential counter.
// Grounded in SPEC_FULL.md §4.7/§11's call for a uuid-backed allocator
// alongside the default sequential counterAllocator: ids minted this way stay unique
// across separate documents and separate CLI invocations instead of
// restarting at 1 in every new graph.
type uuidAllocator struct {
	mu sync.Mutex
}

// WithUUIDIDs installs a uuid.v4-backed IDAllocator in place of the default
// sequential counterAllocator: graph.NewWithAllocator(graph.WithUUIDIDs()).
func WithUUIDIDs() IDAllocator {
	return &uuidAllocator{}
}

func (u *uuidAllocator) NextNodeID() value.NodeID {
	return value.NodeID(foldUUID(uuid.New()))
}

func (u *uuidAllocator) NextDataID() value.DataID {
	return value.DataID(foldUUID(uuid.New()))
}

// foldUUID XORs a uuid's high and low 8 bytes down to a uint64: NodeID and
// DataID are both fixed at 64 bits (spec §4.3), so a 128-bit uuid can only
// ever back them at reduced collision resistance, not carried verbatim.
func foldUUID(id uuid.UUID) uint64 {
	hi := binary.BigEndian.Uint64(id[0:8])
	lo := binary.BigEndian.Uint64(id[8:16])
	return hi ^ lo
}
