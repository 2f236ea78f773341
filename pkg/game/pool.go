package game

import (
	"encoding/binary"
	"math"

	"github.com/holdem-tree/postflop-solver/pkg/cards"
	"github.com/holdem-tree/postflop-solver/pkg/tree"
)

const (
	bytesPerFloat32 = 4
	bytesPerQ15     = 2
)

// AllocateMemory implements spec.md §4.2's allocation phase: walk the full
// arena (every street through the river), size the four byte pools from
// each node's NumElements and per-player hand counts, and assign each
// node's pool offsets. compressed selects 16-bit quantized storage over
// 32-bit float storage, per spec.md §4.4.
func (g *PostFlopGame) AllocateMemory(compressed bool) error {
	return g.allocateUpTo(cards.River, compressed)
}

// AllocateMemoryUpTo allocates storage only through the given street,
// leaving deeper streets unallocated (spec.md §4.2's partial-allocation
// mode, used by pkg/codec's Save and Load for street-scoped snapshots).
func (g *PostFlopGame) AllocateMemoryUpTo(street cards.BoardState, compressed bool) error {
	return g.allocateUpTo(street, compressed)
}

func (g *PostFlopGame) allocateUpTo(street cards.BoardState, compressed bool) error {
	if g.State == Uninitialized {
		return &tree.StateError{Msg: "allocate_memory: tree not built"}
	}

	elemSize := bytesPerFloat32
	if compressed {
		elemSize = bytesPerQ15
	}

	var strategyElems, regretElems, cfvOopElems, cfvIpElems uint64
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if n.Street > street {
			continue
		}
		cfvOopElems += uint64(n.NumHandsOOP)
		cfvIpElems += uint64(n.NumHandsIP)
		if n.Kind == tree.PlayerNode {
			playerHands := uint64(n.handCount(n.ToAct))
			strategyElems += uint64(n.NumActions) * playerHands
			regretElems += uint64(n.NumActions) * playerHands
		}
	}

	if overflowsAlloc(strategyElems, elemSize) || overflowsAlloc(regretElems, elemSize) ||
		overflowsAlloc(cfvOopElems, elemSize) || overflowsAlloc(cfvIpElems, elemSize) {
		return &ResourceError{Msg: "allocate_memory: pool size exceeds addressable range"}
	}

	g.StrategyPool = make([]byte, strategyElems*uint64(elemSize))
	g.RegretPool = make([]byte, regretElems*uint64(elemSize))
	g.IPCFVPool = make([]byte, cfvOopElems*uint64(elemSize)) // OOP's CFV vector, see node.go
	g.ChancePool = make([]byte, cfvIpElems*uint64(elemSize)) // IP's CFV vector, see node.go

	var strategyOff, regretOff, cfvOopOff, cfvIpOff uint64
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if n.Street > street {
			continue
		}
		n.IsCompressed = compressed

		n.CFVOopOff = uint32(cfvOopOff)
		cfvOopOff += uint64(n.NumHandsOOP)
		n.CFVIpOff = uint32(cfvIpOff)
		cfvIpOff += uint64(n.NumHandsIP)

		if n.Kind == tree.PlayerNode {
			playerHands := uint64(n.handCount(n.ToAct))
			count := uint64(n.NumActions) * playerHands
			n.StrategyOff = uint32(strategyOff)
			n.RegretOff = uint32(regretOff)
			strategyOff += count
			regretOff += count
		}
	}

	g.IsCompressed = compressed
	g.elementBytes = elemSize
	if g.StorageMode < street {
		g.StorageMode = street
	}
	g.State = MemoryAllocated
	return nil
}

func overflowsAlloc(elems uint64, elemSize int) bool {
	return elems > math.MaxUint32 || elems*uint64(elemSize) > math.MaxInt
}

// AsF32Slice views a pool region as float32s, valid when !IsCompressed.
func AsF32Slice(pool []byte, offset uint32, n int) []float32 {
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		bits := binary.LittleEndian.Uint32(pool[int(offset)*bytesPerFloat32+i*bytesPerFloat32:])
		out[i] = math.Float32frombits(bits)
	}
	return out
}

// PutF32Slice writes vals into a pool region as float32s.
func PutF32Slice(pool []byte, offset uint32, vals []float32) {
	for i, v := range vals {
		binary.LittleEndian.PutUint32(pool[int(offset)*bytesPerFloat32+i*bytesPerFloat32:], math.Float32bits(v))
	}
}

// AsQ15Slice views a pool region as scale-normalized 16-bit fixed point,
// dequantizing each sample to x*scale/32767, per spec.md §4.4's compressed
// payload contract.
func AsQ15Slice(pool []byte, offset uint32, n int, scale float32) []float32 {
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		raw := int16(binary.LittleEndian.Uint16(pool[int(offset)*bytesPerQ15+i*bytesPerQ15:]))
		out[i] = float32(raw) * scale / 32767
	}
	return out
}

// PutQ15Slice quantizes vals into a pool region, choosing scale so the
// largest magnitude sample maps to ±32767.
func PutQ15Slice(pool []byte, offset uint32, vals []float32) (scale float32) {
	var maxAbs float32
	for _, v := range vals {
		a := v
		if a < 0 {
			a = -a
		}
		if a > maxAbs {
			maxAbs = a
		}
	}
	if maxAbs == 0 {
		maxAbs = 1
	}
	scale = maxAbs
	for i, v := range vals {
		q := int16(math.Round(float64(v) / float64(scale) * 32767))
		binary.LittleEndian.PutUint16(pool[int(offset)*bytesPerQ15+i*bytesPerQ15:], uint16(q))
	}
	return scale
}

// Q15Region names one pool region to quantize as part of a shared-scale
// batch (see PutQ15SlicesShared).
type Q15Region struct {
	Pool   []byte
	Offset uint32
	Vals   []float32
}

// PutQ15SlicesShared quantizes several pool regions against one shared
// scale: the max absolute value across all of them. PostFlopNode's two CFV
// pools (OOP's and IP's) intentionally share Scale3 rather than each
// picking its own, since both hold pot-sized chip magnitudes and losing a
// second per-node float is worth the simpler node record.
func PutQ15SlicesShared(regions []Q15Region) (scale float32) {
	var maxAbs float32
	for _, r := range regions {
		for _, v := range r.Vals {
			a := v
			if a < 0 {
				a = -a
			}
			if a > maxAbs {
				maxAbs = a
			}
		}
	}
	if maxAbs == 0 {
		maxAbs = 1
	}
	for _, r := range regions {
		for i, v := range r.Vals {
			q := int16(math.Round(float64(v) / float64(maxAbs) * 32767))
			binary.LittleEndian.PutUint16(r.Pool[int(r.Offset)*bytesPerQ15+i*bytesPerQ15:], uint16(q))
		}
	}
	return maxAbs
}
