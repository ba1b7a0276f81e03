package ir

import (
	"math"
	"strconv"
)

// Builder constructs instructions inside one Module.
//
// Type and literal constructors deduplicate per module: asking twice
// for the same vector type or the same integer literal returns the
// same InstID. Struct types are exempt because they have identity.
//
// Body instructions are appended to the current insertion block, set
// with SetInsertPoint. With no insertion block, value instructions
// (such as OpSpecialize) are placed at module scope.
type Builder struct {
	m     *Module
	block InstID
}

// NewBuilder creates a builder over m.
func NewBuilder(m *Module) *Builder {
	return &Builder{m: m}
}

// Module returns the module under construction.
func (b *Builder) Module() *Module { return b.m }

// SetInsertPoint directs subsequent body instructions into block.
func (b *Builder) SetInsertPoint(block InstID) { b.block = block }

// emit appends a new instruction to the insertion block, or to module
// scope when no block is set.
func (b *Builder) emit(op Op, typ InstID, operands ...InstID) InstID {
	id := b.m.NewInst(op, typ)
	if len(operands) > 0 {
		b.m.SetOperands(id, operands...)
	}
	parent := b.block
	if parent == Nil {
		parent = b.m.root
	}
	b.m.AppendChild(parent, id)
	return id
}

// internType returns the existing instruction for a structural type,
// or creates one at module scope.
func (m *Module) internType(op Op, operands ...InstID) InstID {
	b := m.keyBuf[:0]
	b = strconv.AppendUint(b, uint64(op), 10)
	for _, o := range operands {
		b = append(b, ':')
		b = strconv.AppendUint(b, uint64(o), 10)
	}
	m.keyBuf = b
	key := string(b)

	if id, exists := m.typeCache[key]; exists {
		return id
	}

	id := m.NewInst(op, Nil)
	if len(operands) > 0 {
		m.SetOperands(id, operands...)
	}
	m.AppendChild(m.root, id)
	m.typeCache[key] = id
	return id
}

// InternLiteral returns the existing instruction for a literal with
// the given payload, or creates one at module scope. Literals are
// values, not locations: equal payloads share one instruction.
func (m *Module) InternLiteral(op Op, typ InstID, bits uint64, str string) InstID {
	key := litKey{op: op, typ: typ, bits: bits, str: str}
	if id, exists := m.litCache[key]; exists {
		return id
	}

	id := m.NewInst(op, typ)
	m.SetBits(id, bits)
	m.SetText(id, str)
	m.AppendChild(m.root, id)
	m.litCache[key] = id
	return id
}

// Type constructors.

func (b *Builder) VoidType() InstID  { return b.m.internType(OpVoidType) }
func (b *Builder) BoolType() InstID  { return b.m.internType(OpBoolType) }
func (b *Builder) IntType() InstID   { return b.m.internType(OpIntType) }
func (b *Builder) UIntType() InstID  { return b.m.internType(OpUIntType) }
func (b *Builder) FloatType() InstID { return b.m.internType(OpFloatType) }

// VecType returns the vector type with the given element type and
// lane count.
func (b *Builder) VecType(elem InstID, lanes int64) InstID {
	return b.m.internType(OpVecType, elem, b.IntLit(lanes))
}

// MatType returns the matrix type with the given element type and
// dimensions.
func (b *Builder) MatType(elem InstID, cols, rows int64) InstID {
	return b.m.internType(OpMatType, elem, b.IntLit(cols), b.IntLit(rows))
}

// PtrType returns the pointer type to pointee.
func (b *Builder) PtrType(pointee InstID) InstID {
	return b.m.internType(OpPtrType, pointee)
}

// ArrayType returns the array type with the given element type and
// length.
func (b *Builder) ArrayType(elem InstID, length int64) InstID {
	return b.m.internType(OpArrayType, elem, b.IntLit(length))
}

// FuncType returns the function type with the given result and
// parameter types.
func (b *Builder) FuncType(result InstID, params ...InstID) InstID {
	operands := make([]InstID, 0, len(params)+1)
	operands = append(operands, result)
	operands = append(operands, params...)
	return b.m.internType(OpFuncType, operands...)
}

func (b *Builder) SamplerType() InstID { return b.m.internType(OpSamplerType) }

// TextureType returns the texture type sampling elements of elem.
func (b *Builder) TextureType(elem InstID) InstID {
	return b.m.internType(OpTextureType, elem)
}

// ConstantBufferType returns the constant buffer type wrapping elem.
func (b *Builder) ConstantBufferType(elem InstID) InstID {
	return b.m.internType(OpConstantBufferType, elem)
}

// StructField pairs a struct key with a field type.
type StructField struct {
	Key  InstID
	Type InstID
}

// StructKey creates a fresh struct key naming one field. Keys have
// identity; two keys with the same name are distinct fields unless
// resolved to each other through linkage.
func (b *Builder) StructKey(name string) InstID {
	id := b.m.NewInst(OpStructKey, Nil)
	b.m.SetText(id, name)
	b.m.AppendChild(b.m.root, id)
	return id
}

// StructType creates a fresh struct type with the given fields.
// Struct types have identity and are never deduplicated.
func (b *Builder) StructType(fields ...StructField) InstID {
	id := b.m.NewInst(OpStructType, Nil)
	b.m.AppendChild(b.m.root, id)
	for _, f := range fields {
		field := b.m.NewInst(OpStructField, Nil)
		b.m.SetOperands(field, f.Key, f.Type)
		b.m.AppendChild(id, field)
	}
	return id
}

// Literal constructors.

func (b *Builder) BoolLit(v bool) InstID {
	bits := uint64(0)
	if v {
		bits = 1
	}
	return b.m.InternLiteral(OpBoolLit, b.BoolType(), bits, "")
}

func (b *Builder) IntLit(v int64) InstID {
	return b.m.InternLiteral(OpIntLit, b.IntType(), uint64(v), "")
}

func (b *Builder) FloatLit(v float64) InstID {
	return b.m.InternLiteral(OpFloatLit, b.FloatType(), math.Float64bits(v), "")
}

func (b *Builder) StringLit(s string) InstID {
	return b.m.InternLiteral(OpStringLit, Nil, 0, s)
}

// Module-scope values.

// Func creates a function of the given function type at module scope.
// It has no blocks yet; a function without blocks is a declaration.
func (b *Builder) Func(fnType InstID) InstID {
	id := b.m.NewInst(OpFunc, fnType)
	b.m.AppendChild(b.m.root, id)
	return id
}

// Generic creates a parametric declaration at module scope. Its
// single block takes the generic parameters and returns the inner
// value.
func (b *Builder) Generic() InstID {
	id := b.m.NewInst(OpGeneric, Nil)
	b.m.AppendChild(b.m.root, id)
	return id
}

// GlobalVar creates a module-scope variable holding a pointee value.
// Its type is the pointer type.
func (b *Builder) GlobalVar(pointee InstID) InstID {
	id := b.m.NewInst(OpGlobalVar, b.PtrType(pointee))
	b.m.AppendChild(b.m.root, id)
	return id
}

// GlobalConstant creates a module-scope constant with an initializer.
func (b *Builder) GlobalConstant(typ, init InstID) InstID {
	id := b.m.NewInst(OpGlobalConstant, typ)
	b.m.SetOperands(id, init)
	b.m.AppendChild(b.m.root, id)
	return id
}

// GlobalParam creates a module-scope shader parameter (a resource or
// uniform supplied by the runtime).
func (b *Builder) GlobalParam(typ InstID) InstID {
	id := b.m.NewInst(OpGlobalParam, typ)
	b.m.AppendChild(b.m.root, id)
	return id
}

// BindGlobalParam records at module scope that value is supplied for
// the global parameter param.
func (b *Builder) BindGlobalParam(param, value InstID) InstID {
	id := b.m.NewInst(OpBindGlobalParam, Nil)
	b.m.SetOperands(id, param, value)
	b.m.AppendChild(b.m.root, id)
	return id
}

// Code structure.

// AppendBlock adds a new block to a function or generic.
func (b *Builder) AppendBlock(code InstID) InstID {
	id := b.m.NewInst(OpBlock, Nil)
	b.m.AppendChild(code, id)
	return id
}

// Param appends a parameter to the current insertion block.
// Parameters must be added before any body instruction.
func (b *Builder) Param(typ InstID) InstID {
	return b.emit(OpParam, typ)
}

// Var emits a function-local variable holding a pointee value.
func (b *Builder) Var(pointee InstID) InstID {
	return b.emit(OpVar, b.PtrType(pointee))
}

// Body instructions.

func (b *Builder) Call(typ, callee InstID, args ...InstID) InstID {
	operands := make([]InstID, 0, len(args)+1)
	operands = append(operands, callee)
	operands = append(operands, args...)
	return b.emit(OpCall, typ, operands...)
}

// IntrinsicCall emits a call to a named builtin such as "dot" or
// "sample".
func (b *Builder) IntrinsicCall(typ InstID, name string, args ...InstID) InstID {
	id := b.emit(OpIntrinsicCall, typ, args...)
	b.m.SetText(id, name)
	return id
}

// Specialize emits an unreduced instantiation of a generic with the
// given arguments. The linker reduces these eagerly.
func (b *Builder) Specialize(typ, generic InstID, args ...InstID) InstID {
	operands := make([]InstID, 0, len(args)+1)
	operands = append(operands, generic)
	operands = append(operands, args...)
	return b.emit(OpSpecialize, typ, operands...)
}

func (b *Builder) Load(typ, ptr InstID) InstID {
	return b.emit(OpLoad, typ, ptr)
}

func (b *Builder) Store(ptr, value InstID) InstID {
	return b.emit(OpStore, Nil, ptr, value)
}

func (b *Builder) FieldExtract(typ, base, key InstID) InstID {
	return b.emit(OpFieldExtract, typ, base, key)
}

func (b *Builder) FieldAddress(typ, base, key InstID) InstID {
	return b.emit(OpFieldAddress, typ, base, key)
}

func (b *Builder) ElemExtract(typ, base, index InstID) InstID {
	return b.emit(OpElemExtract, typ, base, index)
}

// Construct emits a composite value from components.
func (b *Builder) Construct(typ InstID, components ...InstID) InstID {
	return b.emit(OpConstruct, typ, components...)
}

func (b *Builder) Add(typ, l, r InstID) InstID { return b.emit(OpAdd, typ, l, r) }
func (b *Builder) Sub(typ, l, r InstID) InstID { return b.emit(OpSub, typ, l, r) }
func (b *Builder) Mul(typ, l, r InstID) InstID { return b.emit(OpMul, typ, l, r) }
func (b *Builder) Div(typ, l, r InstID) InstID { return b.emit(OpDiv, typ, l, r) }
func (b *Builder) Neg(typ, v InstID) InstID    { return b.emit(OpNeg, typ, v) }

func (b *Builder) Eq(l, r InstID) InstID        { return b.emit(OpEq, b.BoolType(), l, r) }
func (b *Builder) Neq(l, r InstID) InstID       { return b.emit(OpNeq, b.BoolType(), l, r) }
func (b *Builder) Less(l, r InstID) InstID      { return b.emit(OpLess, b.BoolType(), l, r) }
func (b *Builder) LessEq(l, r InstID) InstID    { return b.emit(OpLessEq, b.BoolType(), l, r) }
func (b *Builder) Greater(l, r InstID) InstID   { return b.emit(OpGreater, b.BoolType(), l, r) }
func (b *Builder) GreaterEq(l, r InstID) InstID { return b.emit(OpGreaterEq, b.BoolType(), l, r) }

func (b *Builder) Select(typ, cond, accept, reject InstID) InstID {
	return b.emit(OpSelect, typ, cond, accept, reject)
}

// Terminators.

func (b *Builder) ReturnValue(v InstID) InstID {
	return b.emit(OpReturnValue, Nil, v)
}

func (b *Builder) ReturnVoid() InstID {
	return b.emit(OpReturnVoid, Nil)
}

func (b *Builder) Branch(target InstID) InstID {
	return b.emit(OpBranch, Nil, target)
}

func (b *Builder) CondBranch(cond, then, els InstID) InstID {
	return b.emit(OpCondBranch, Nil, cond, then, els)
}

func (b *Builder) Unreachable() InstID {
	return b.emit(OpUnreachable, Nil)
}

// Decoration helpers.

// Export offers id to other modules under the given linkage name.
func (b *Builder) Export(id InstID, name string) {
	b.m.Decorate(id, Decoration{Kind: DecExport, Text: name})
}

// Import marks id as a reference to an external definition with the
// given linkage name.
func (b *Builder) Import(id InstID, name string) {
	b.m.Decorate(id, Decoration{Kind: DecImport, Text: name})
}

// SetTarget restricts id to one output target.
func (b *Builder) SetTarget(id InstID, target Target) {
	b.m.Decorate(id, Decoration{Kind: DecTarget, Text: target.Name()})
}

// MarkEntryPoint declares id as a pipeline entry point.
func (b *Builder) MarkEntryPoint(id InstID, name string, stage Stage) {
	b.m.Decorate(id, Decoration{Kind: DecEntryPoint, Text: name, Stage: stage})
}

// KeepAlive protects id from elimination.
func (b *Builder) KeepAlive(id InstID) {
	b.m.Decorate(id, Decoration{Kind: DecKeepAlive})
}

// SetBinding records an explicit register claim on id.
func (b *Builder) SetBinding(id InstID, info ResourceInfo) {
	b.m.Decorate(id, Decoration{Kind: DecBinding, Binding: &info})
}
