package layout

import (
	"fmt"

	"github.com/gogpu/shade/ir"
	"github.com/gogpu/shade/link"
)

// resourceShape derives the register class and slot count of a
// parameter from its type. Arrays of resources occupy one slot per
// element.
func resourceShape(m *ir.Module, typ ir.InstID) (ir.ResourceKind, uint32) {
	count := uint32(1)
	if typ != ir.Nil && m.Op(typ) == ir.OpArrayType {
		if n := m.Operand(typ, 1); n != ir.Nil && m.Op(n) == ir.OpIntLit {
			count = uint32(m.Bits(n))
		}
		typ = m.Operand(typ, 0)
	}
	if typ == ir.Nil {
		return ir.ResourceUniform, count
	}
	switch m.Op(typ) {
	case ir.OpConstantBufferType:
		return ir.ResourceConstantBuffer, count
	case ir.OpTextureType:
		return ir.ResourceShaderResource, count
	case ir.OpSamplerType:
		return ir.ResourceSampler, count
	default:
		return ir.ResourceUniform, count
	}
}

// globalEntry is one global shader parameter awaiting a binding.
type globalEntry struct {
	name     string
	kind     ir.ResourceKind
	count    uint32
	explicit *ir.ResourceInfo
}

// ComputeGlobalLayouts assigns bindings to every linkage-named global
// shader parameter across the given modules. Explicitly requested
// bindings claim their slots first; the rest pack into the lowest
// free indices in declaration order. The result keys by linkage name
// for the linker to attach during cloning.
func ComputeGlobalLayouts(modules []*ir.Module, target ir.Target) (map[string]*ir.VarLayout, error) {
	alloc := NewAllocator(target)

	var entries []globalEntry
	seen := make(map[string]bool)
	for _, m := range modules {
		for _, g := range m.Globals() {
			if m.Op(g) != ir.OpGlobalParam {
				continue
			}
			name, ok := m.LinkageName(g)
			if !ok || seen[name] {
				continue
			}
			seen[name] = true

			kind, count := resourceShape(m, m.TypeOf(g))
			entry := globalEntry{name: name, kind: kind, count: count}
			if d, ok := m.FindDecoration(g, ir.DecBinding); ok && d.Binding != nil {
				entry.explicit = d.Binding
			}
			entries = append(entries, entry)
		}
	}

	layouts := make(map[string]*ir.VarLayout, len(entries))

	for _, e := range entries {
		if e.explicit == nil {
			continue
		}
		info := *e.explicit
		if info.Count == 0 {
			info.Count = e.count
		}
		if !alloc.Claim(info.Kind, info.Space, info.Index, info.Count) {
			return nil, NewSymbolError(ErrBindingConflict,
				fmt.Sprintf("%s index %d in space %d is already taken", info.Kind, info.Index, info.Space), e.name)
		}
		layouts[e.name] = &ir.VarLayout{Resources: []ir.ResourceInfo{info}}
	}

	for _, e := range entries {
		if e.explicit != nil {
			continue
		}
		info := ir.ResourceInfo{
			Kind:  e.kind,
			Index: alloc.Allocate(e.kind, 0, e.count),
			Count: e.count,
		}
		layouts[e.name] = &ir.VarLayout{Resources: []ir.ResourceInfo{info}}
	}

	return layouts, nil
}

// ComputeEntryPointLayout lays out one entry point: varying inputs
// for its parameters in positional order, and a varying output for
// its result when it returns one. Resource-typed parameters draw from
// their own register classes instead.
func ComputeEntryPointLayout(m *ir.Module, entry ir.InstID, target ir.Target) (*link.EntryPointLayout, error) {
	name, _ := m.LinkageName(entry)
	if m.Op(entry) != ir.OpFunc {
		return nil, NewSymbolError(ErrBadDeclaration,
			fmt.Sprintf("entry point is %s, expected a function", m.Op(entry)), name)
	}
	sig := m.TypeOf(entry)
	if sig == ir.Nil || m.Op(sig) != ir.OpFuncType {
		return nil, NewSymbolError(ErrBadDeclaration, "entry point has no function type", name)
	}

	alloc := NewAllocator(target)
	operands := m.Operands(sig)
	out := &link.EntryPointLayout{}

	if len(operands) > 0 {
		if result := operands[0]; result != ir.Nil && m.Op(result) != ir.OpVoidType {
			out.Self = &ir.VarLayout{Resources: []ir.ResourceInfo{{
				Kind:  ir.ResourceVaryingOutput,
				Index: alloc.Allocate(ir.ResourceVaryingOutput, 0, 1),
				Count: 1,
			}}}
		}
		for _, p := range operands[1:] {
			kind, count := resourceShape(m, p)
			if kind == ir.ResourceUniform {
				kind = ir.ResourceVaryingInput
			}
			info := ir.ResourceInfo{
				Kind:  kind,
				Index: alloc.Allocate(kind, 0, count),
				Count: count,
			}
			out.Params = append(out.Params, &ir.VarLayout{Resources: []ir.ResourceInfo{info}})
		}
	}

	return out, nil
}
