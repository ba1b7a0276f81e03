package link

import (
	"github.com/gogpu/shade/ir"
)

// Candidate ranking by target specialization. A candidate restricted
// to the requested target beats one with no restriction, which beats
// one restricted to another target.
const (
	rankOtherTarget = iota
	rankUnrestricted
	rankTargetMatch
)

// selectCandidate picks the candidate to clone for target. The order
// is total: target rank first, then export over import, then
// definition over declaration; remaining ties keep the earliest
// candidate, so selection is deterministic for a fixed build order.
func selectCandidate(candidates []Symbol, target ir.Target) Symbol {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if better(c, best, target) {
			best = c
		}
	}
	return best
}

// better reports whether a should replace b as the chosen candidate.
func better(a, b Symbol, target ir.Target) bool {
	ra, rb := targetRank(a, target), targetRank(b, target)
	if ra != rb {
		return ra > rb
	}

	ea, eb := a.Module.IsExported(a.Inst), b.Module.IsExported(b.Inst)
	if ea != eb {
		return ea
	}

	da, db := a.Module.IsDefinition(a.Inst), b.Module.IsDefinition(b.Inst)
	if da != db {
		return da
	}

	return false
}

func targetRank(s Symbol, target ir.Target) int {
	d, ok := targetRestriction(s.Module, s.Inst)
	if !ok {
		return rankUnrestricted
	}
	if d.Text == target.Name() {
		return rankTargetMatch
	}
	return rankOtherTarget
}

// targetRestriction finds a target decoration on inst, looking
// through a generic wrapper to the value its body returns. A generic
// producing an HLSL-only function is itself HLSL-only.
func targetRestriction(m *ir.Module, inst ir.InstID) (ir.Decoration, bool) {
	if d, ok := m.FindDecoration(inst, ir.DecTarget); ok {
		return d, true
	}
	if m.Op(inst) == ir.OpGeneric {
		if inner := genericResult(m, inst); inner != ir.Nil {
			return m.FindDecoration(inner, ir.DecTarget)
		}
	}
	return ir.Decoration{}, false
}

// genericResult returns the value produced by a generic's body, or
// Nil for declarations and malformed bodies.
func genericResult(m *ir.Module, generic ir.InstID) ir.InstID {
	block := m.FirstBlock(generic)
	if block == ir.Nil {
		return ir.Nil
	}
	term := m.Terminator(block)
	if term == ir.Nil || m.Op(term) != ir.OpReturnValue {
		return ir.Nil
	}
	return m.Operand(term, 0)
}
