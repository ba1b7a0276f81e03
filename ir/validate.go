package ir

import (
	"fmt"
)

// ValidationError represents a structural defect found in a module.
type ValidationError struct {
	Message string
	Inst    InstID
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Inst != Nil {
		return fmt.Sprintf("inst %d: %s", e.Inst, e.Message)
	}
	return e.Message
}

// Validator checks module graphs for structural defects: references
// outside the arena, broken parent links, misplaced instructions and
// blocks without terminators.
type Validator struct {
	module *Module
	errors []ValidationError
}

// Validate checks the module graph for correctness.
// Returns validation errors if any, or nil if the module is valid.
func Validate(module *Module) ([]ValidationError, error) {
	if module == nil {
		return nil, fmt.Errorf("module is nil")
	}

	v := &Validator{
		module: module,
		errors: make([]ValidationError, 0),
	}

	v.validateInst(module.Root(), Nil)
	v.validateGlobals()

	if len(v.errors) > 0 {
		return v.errors, nil
	}
	return nil, nil
}

// validateInst checks one instruction and recurses into its children.
func (v *Validator) validateInst(id, parent InstID) {
	if !v.module.Valid(id) {
		v.addError(parent, fmt.Sprintf("child reference %d outside arena", id))
		return
	}

	op := v.module.Op(id)
	if op == OpInvalid || op >= opCount {
		v.addError(id, "invalid operation tag")
		return
	}

	if v.module.Parent(id) != parent {
		v.addError(id, fmt.Sprintf("parent link is %d, expected %d", v.module.Parent(id), parent))
	}

	if typ := v.module.TypeOf(id); typ != Nil && !v.module.Valid(typ) {
		v.addError(id, fmt.Sprintf("type reference %d outside arena", typ))
	}

	for i, o := range v.module.Operands(id) {
		if o != Nil && !v.module.Valid(o) {
			v.addError(id, fmt.Sprintf("operand %d references %d outside arena", i, o))
		}
	}

	if len(v.module.Children(id)) > 0 && !v.canParent(op) {
		v.addError(id, fmt.Sprintf("%s cannot have children", op))
	}

	if op == OpBlock {
		v.validateBlockShape(id)
	}

	for _, c := range v.module.Children(id) {
		v.validateInst(c, id)
	}
}

// canParent reports which ops legitimately carry child lists.
func (v *Validator) canParent(op Op) bool {
	switch op {
	case OpModule, OpFunc, OpGeneric, OpBlock, OpStructType:
		return true
	}
	return false
}

// validateBlockShape checks that parameters lead the block and that a
// terminator ends it. Nested functions and types are legal block
// contents; generic bodies build their produced values inline.
func (v *Validator) validateBlockShape(block InstID) {
	children := v.module.Children(block)
	sawBody := false
	for _, c := range children {
		op := v.module.Op(c)
		if op == OpParam {
			if sawBody {
				v.addError(c, "parameter after body instruction")
			}
			continue
		}
		sawBody = true
		if op == OpBlock || op == OpModule {
			v.addError(c, fmt.Sprintf("%s cannot appear inside a block", op))
		}
	}
	if len(children) == 0 {
		v.addError(block, "empty block")
		return
	}
	last := children[len(children)-1]
	if !v.module.Op(last).IsTerminator() {
		v.addError(block, fmt.Sprintf("block ends with %s, expected a terminator", v.module.Op(last)))
	}
	for _, c := range children[:len(children)-1] {
		if v.module.Op(c).IsTerminator() {
			v.addError(c, "terminator before end of block")
		}
	}
}

// validateGlobals checks module-scope placement rules.
func (v *Validator) validateGlobals() {
	for _, g := range v.module.Globals() {
		op := v.module.Op(g)
		switch {
		case op.IsType(), op.IsLiteral(), op.IsGlobalValue():
		case op == OpBindGlobalParam, op == OpSpecialize:
		default:
			v.addError(g, fmt.Sprintf("%s cannot appear at module scope", op))
		}
	}
}

func (v *Validator) addError(id InstID, msg string) {
	v.errors = append(v.errors, ValidationError{Message: msg, Inst: id})
}
