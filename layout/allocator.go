package layout

import (
	"sort"

	"github.com/gogpu/shade/ir"
)

// span is one reserved index range, half open.
type span struct {
	begin, end uint32
}

// rangeSet tracks reserved spans of one register class, sorted and
// disjoint.
type rangeSet struct {
	spans []span
}

// claim reserves [begin, begin+count). It reports false when the
// range overlaps an existing reservation.
func (r *rangeSet) claim(begin, count uint32) bool {
	end := begin + count
	i := sort.Search(len(r.spans), func(i int) bool {
		return r.spans[i].end > begin
	})
	if i < len(r.spans) && r.spans[i].begin < end {
		return false
	}
	r.spans = append(r.spans, span{})
	copy(r.spans[i+1:], r.spans[i:])
	r.spans[i] = span{begin: begin, end: end}
	r.coalesce(i)
	return true
}

// allocate reserves the lowest free range of count slots and returns
// its first index.
func (r *rangeSet) allocate(count uint32) uint32 {
	var begin uint32
	for i, s := range r.spans {
		if s.begin-begin >= count {
			r.spans = append(r.spans, span{})
			copy(r.spans[i+1:], r.spans[i:])
			r.spans[i] = span{begin: begin, end: begin + count}
			r.coalesce(i)
			return begin
		}
		begin = s.end
	}
	r.spans = append(r.spans, span{begin: begin, end: begin + count})
	r.coalesce(len(r.spans) - 1)
	return begin
}

// coalesce merges the span at i with adjacent spans it touches.
func (r *rangeSet) coalesce(i int) {
	if i+1 < len(r.spans) && r.spans[i].end == r.spans[i+1].begin {
		r.spans[i].end = r.spans[i+1].end
		r.spans = append(r.spans[:i+1], r.spans[i+2:]...)
	}
	if i > 0 && r.spans[i-1].end == r.spans[i].begin {
		r.spans[i-1].end = r.spans[i].end
		r.spans = append(r.spans[:i], r.spans[i+1:]...)
	}
}

// classKey addresses one register class of one binding space.
type classKey struct {
	kind  ir.ResourceKind
	space uint32
}

// Allocator hands out binding indices per register class and space.
// HLSL keeps its register classes apart; the other targets share one
// binding namespace per space, with varyings always separate.
type Allocator struct {
	target  ir.Target
	classes map[classKey]*rangeSet
}

// NewAllocator creates an empty allocator for target.
func NewAllocator(target ir.Target) *Allocator {
	return &Allocator{
		target:  target,
		classes: make(map[classKey]*rangeSet),
	}
}

// class maps a resource kind to its allocation bucket. Everything
// outside HLSL folds buffers, textures, samplers and uniforms into
// one numbered binding namespace.
func (a *Allocator) class(kind ir.ResourceKind) ir.ResourceKind {
	switch kind {
	case ir.ResourceVaryingInput, ir.ResourceVaryingOutput:
		return kind
	}
	if a.target == ir.TargetHLSL {
		return kind
	}
	return ir.ResourceUniform
}

func (a *Allocator) ranges(kind ir.ResourceKind, space uint32) *rangeSet {
	key := classKey{kind: a.class(kind), space: space}
	r := a.classes[key]
	if r == nil {
		r = &rangeSet{}
		a.classes[key] = r
	}
	return r
}

// Claim reserves an explicitly requested binding. It reports false
// when the slot is already taken.
func (a *Allocator) Claim(kind ir.ResourceKind, space, index, count uint32) bool {
	if count == 0 {
		count = 1
	}
	return a.ranges(kind, space).claim(index, count)
}

// Allocate reserves the lowest free binding of the kind's class and
// returns its index.
func (a *Allocator) Allocate(kind ir.ResourceKind, space, count uint32) uint32 {
	if count == 0 {
		count = 1
	}
	return a.ranges(kind, space).allocate(count)
}
