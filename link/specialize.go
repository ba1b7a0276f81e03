package link

import (
	"fmt"

	"github.com/gogpu/shade/ir"
)

// specializeGeneric reduces one destination specialize instruction by
// evaluating the generic's body with its parameters bound to the
// given arguments. Body instructions materialize at module scope in a
// fresh environment frame, and the value the body returns becomes the
// result. The result can itself be a specialize instruction, which
// the caller reduces in turn.
func (l *Linker) specializeGeneric(spec ir.InstID) (ir.InstID, error) {
	operands := l.dst.Operands(spec)
	if len(operands) == 0 {
		return ir.Nil, NewError(ErrBadSpecialize, "specialize has no operands")
	}
	generic := operands[0]
	args := operands[1:]

	name, _ := l.dst.LinkageName(generic)
	if l.dst.Op(generic) != ir.OpGeneric {
		return ir.Nil, NewSymbolError(ErrBadSpecialize,
			fmt.Sprintf("specialize of %s, expected a generic", l.dst.Op(generic)), name)
	}

	block := l.dst.FirstBlock(generic)
	if block == ir.Nil {
		return ir.Nil, NewSymbolError(ErrBadSpecialize, "generic has no body to instantiate", name)
	}

	params := l.dst.BlockParams(block)
	if len(params) != len(args) {
		return ir.Nil, NewSymbolError(ErrBadSpecialize,
			fmt.Sprintf("%d arguments for %d parameters", len(args), len(params)), name)
	}

	frame := newEnv(l.rootEnv)
	for i := range params {
		frame.register(srcRef{module: l.dst, inst: params[i]}, args[i])
	}

	for _, inst := range l.dst.Children(block)[len(params):] {
		if l.dst.Op(inst) == ir.OpReturnValue {
			return l.cloneValue(frame, l.dst, l.dst.Operand(inst, 0))
		}
		if _, err := l.cloneInst(frame, l.dst, inst, l.dst.Root()); err != nil {
			return ir.Nil, err
		}
	}
	return ir.Nil, NewSymbolError(ErrBadSpecialize, "generic body does not return a value", name)
}
