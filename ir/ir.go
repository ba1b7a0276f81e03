package ir

// InstID references an instruction within its owning Module's arena.
// IDs are module-local; an ID from one module is meaningless in
// another.
type InstID uint32

// Nil is the null instruction reference. Slot 0 of every arena is
// reserved so that the zero value never aliases a live instruction.
const Nil InstID = 0

// inst is one arena slot.
type inst struct {
	op       Op
	typ      InstID
	operands []InstID
	children []InstID
	parent   InstID
	decs     []Decoration
	bits     uint64 // literal payload (integer value or float bits)
	str      string // literal payload for strings, name for struct keys
}

// Module owns an instruction arena and its root instruction.
type Module struct {
	// Name identifies the module in diagnostics and disassembly.
	Name string

	insts []inst
	root  InstID

	typeCache map[string]InstID
	litCache  map[litKey]InstID
	keyBuf    []byte // reusable buffer for building type keys
}

// litKey identifies a literal for per-module deduplication.
type litKey struct {
	op   Op
	typ  InstID
	bits uint64
	str  string
}

// NewModule creates an empty module holding only its root instruction.
func NewModule(name string) *Module {
	m := &Module{
		Name:      name,
		insts:     make([]inst, 1, 64),
		typeCache: make(map[string]InstID, 16),
		litCache:  make(map[litKey]InstID, 16),
		keyBuf:    make([]byte, 0, 64),
	}
	m.root = m.NewInst(OpModule, Nil)
	return m
}

// Root returns the module root instruction.
func (m *Module) Root() InstID { return m.root }

// Globals returns the module-scope instructions in declaration order.
// The returned slice aliases module storage and must not be mutated.
func (m *Module) Globals() []InstID { return m.insts[m.root].children }

// Count returns the number of live instructions in the arena.
func (m *Module) Count() int { return len(m.insts) - 1 }

// Valid reports whether id is a live instruction of this module.
func (m *Module) Valid(id InstID) bool {
	return id != Nil && int(id) < len(m.insts)
}

// Op returns the operation tag of id.
func (m *Module) Op(id InstID) Op { return m.insts[id].op }

// TypeOf returns the result type of id, or Nil for untyped
// instructions.
func (m *Module) TypeOf(id InstID) InstID { return m.insts[id].typ }

// Operands returns the operand list of id. The returned slice aliases
// module storage and must not be mutated.
func (m *Module) Operands(id InstID) []InstID { return m.insts[id].operands }

// Operand returns the i-th operand of id.
func (m *Module) Operand(id InstID, i int) InstID { return m.insts[id].operands[i] }

// Children returns the child list of id in order. The returned slice
// aliases module storage and must not be mutated.
func (m *Module) Children(id InstID) []InstID { return m.insts[id].children }

// Parent returns the parent of id, or Nil for unparented instructions
// and the root.
func (m *Module) Parent(id InstID) InstID { return m.insts[id].parent }

// Bits returns the numeric payload of a literal instruction.
func (m *Module) Bits(id InstID) uint64 { return m.insts[id].bits }

// Text returns the string payload of id (string literals, struct key
// names).
func (m *Module) Text(id InstID) string { return m.insts[id].str }

// Decorations returns the decorations of id. The returned slice
// aliases module storage and must not be mutated.
func (m *Module) Decorations(id InstID) []Decoration { return m.insts[id].decs }

// NewInst allocates a fresh unparented instruction.
func (m *Module) NewInst(op Op, typ InstID) InstID {
	id := InstID(len(m.insts))
	m.insts = append(m.insts, inst{op: op, typ: typ})
	return id
}

// SetType sets the result type of id.
func (m *Module) SetType(id, typ InstID) { m.insts[id].typ = typ }

// SetOperands replaces the operand list of id.
func (m *Module) SetOperands(id InstID, operands ...InstID) {
	m.insts[id].operands = operands
}

// SetBits sets the numeric payload of id.
func (m *Module) SetBits(id InstID, bits uint64) { m.insts[id].bits = bits }

// SetText sets the string payload of id.
func (m *Module) SetText(id InstID, s string) { m.insts[id].str = s }

// AppendChild appends child to parent's child list and records the
// back reference. A child belongs to at most one parent.
func (m *Module) AppendChild(parent, child InstID) {
	m.insts[parent].children = append(m.insts[parent].children, child)
	m.insts[child].parent = parent
}

// MoveToBack moves id to the end of its parent's child list,
// preserving the relative order of its siblings.
func (m *Module) MoveToBack(id InstID) {
	parent := m.insts[id].parent
	if parent == Nil {
		return
	}
	children := m.insts[parent].children
	for i, c := range children {
		if c == id {
			copy(children[i:], children[i+1:])
			children[len(children)-1] = id
			return
		}
	}
}

// Decorate attaches a decoration to id.
func (m *Module) Decorate(id InstID, d Decoration) {
	m.insts[id].decs = append(m.insts[id].decs, d)
}

// FindDecoration returns the first decoration of the given kind on id.
func (m *Module) FindDecoration(id InstID, kind DecorationKind) (Decoration, bool) {
	for _, d := range m.insts[id].decs {
		if d.Kind == kind {
			return d, true
		}
	}
	return Decoration{}, false
}

// HasDecoration reports whether id carries a decoration of the given
// kind.
func (m *Module) HasDecoration(id InstID, kind DecorationKind) bool {
	_, ok := m.FindDecoration(id, kind)
	return ok
}

// LinkageName returns the name under which id participates in
// cross-module resolution. Both export and import decorations carry
// one.
func (m *Module) LinkageName(id InstID) (string, bool) {
	for _, d := range m.insts[id].decs {
		if d.Kind == DecExport || d.Kind == DecImport {
			return d.Text, true
		}
	}
	return "", false
}

// IsExported reports whether id carries an export decoration.
func (m *Module) IsExported(id InstID) bool {
	return m.HasDecoration(id, DecExport)
}

// FirstBlock returns the first block child of a code-bearing
// instruction, or Nil if it has none (a declaration).
func (m *Module) FirstBlock(id InstID) InstID {
	for _, c := range m.insts[id].children {
		if m.insts[c].op == OpBlock {
			return c
		}
	}
	return Nil
}

// IsDefinition reports whether a code-bearing instruction has a body.
// Instructions that cannot carry code count as definitions.
func (m *Module) IsDefinition(id InstID) bool {
	if !m.insts[id].op.HasCode() {
		return true
	}
	return m.FirstBlock(id) != Nil
}

// BlockParams returns the leading OpParam children of a block. For a
// function's first block these are the function parameters; for a
// generic's block they are the generic parameters.
func (m *Module) BlockParams(block InstID) []InstID {
	children := m.insts[block].children
	n := 0
	for n < len(children) && m.insts[children[n]].op == OpParam {
		n++
	}
	return children[:n]
}

// Terminator returns the last instruction of a block, or Nil for an
// empty block.
func (m *Module) Terminator(block InstID) InstID {
	children := m.insts[block].children
	if len(children) == 0 {
		return Nil
	}
	return children[len(children)-1]
}

// Target selects the output dialect of a compilation.
type Target uint8

const (
	TargetHLSL Target = iota
	TargetGLSL
	TargetC
	TargetCPP
)

// Name returns the canonical lower-case target name, as used in
// target decorations and manifests.
func (t Target) Name() string {
	switch t {
	case TargetHLSL:
		return "hlsl"
	case TargetGLSL:
		return "glsl"
	case TargetC:
		return "c"
	case TargetCPP:
		return "cpp"
	}
	return "unknown"
}

// TargetFromName resolves a canonical target name.
func TargetFromName(name string) (Target, bool) {
	switch name {
	case "hlsl":
		return TargetHLSL, true
	case "glsl":
		return TargetGLSL, true
	case "c":
		return TargetC, true
	case "cpp":
		return TargetCPP, true
	}
	return 0, false
}

// Stage represents a shader stage.
type Stage uint8

const (
	StageVertex Stage = iota
	StageFragment
	StageCompute
)

// String returns the lower-case stage name.
func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	case StageCompute:
		return "compute"
	}
	return "unknown"
}

// StageFromName resolves a stage name as it appears in manifests.
func StageFromName(name string) (Stage, bool) {
	switch name {
	case "vertex":
		return StageVertex, true
	case "fragment":
		return StageFragment, true
	case "compute":
		return StageCompute, true
	}
	return 0, false
}
