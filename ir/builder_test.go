package ir

import (
	"math"
	"testing"
)

func TestBuilder_TypeDeduplication(t *testing.T) {
	m := NewModule("demo")
	b := NewBuilder(m)

	f32a := b.FloatType()
	f32b := b.FloatType()
	if f32a != f32b {
		t.Errorf("Expected same handle for float type, got %d and %d", f32a, f32b)
	}

	vec4a := b.VecType(f32a, 4)
	vec4b := b.VecType(f32a, 4)
	if vec4a != vec4b {
		t.Errorf("Expected same handle for identical vector types, got %d and %d", vec4a, vec4b)
	}

	fnA := b.FuncType(vec4a, f32a)
	fnB := b.FuncType(vec4a, f32a)
	if fnA != fnB {
		t.Errorf("Expected same handle for identical function types, got %d and %d", fnA, fnB)
	}
}

func TestBuilder_DifferentTypes(t *testing.T) {
	m := NewModule("demo")
	b := NewBuilder(m)

	f32 := b.FloatType()
	i32 := b.IntType()

	vec4f := b.VecType(f32, 4)
	vec3f := b.VecType(f32, 3)
	vec4i := b.VecType(i32, 4)

	if vec4f == vec3f {
		t.Error("vec4<float> should differ from vec3<float>")
	}
	if vec4f == vec4i {
		t.Error("vec4<float> should differ from vec4<int>")
	}
	if b.PtrType(f32) == b.PtrType(i32) {
		t.Error("Pointers with different pointees should differ")
	}
}

func TestBuilder_StructTypesHaveIdentity(t *testing.T) {
	m := NewModule("demo")
	b := NewBuilder(m)

	f32 := b.FloatType()
	key := b.StructKey("x")

	s1 := b.StructType(StructField{Key: key, Type: f32})
	s2 := b.StructType(StructField{Key: key, Type: f32})

	if s1 == s2 {
		t.Error("Struct types must not be deduplicated")
	}
	if len(m.Children(s1)) != 1 {
		t.Errorf("Expected 1 field, got %d", len(m.Children(s1)))
	}
	field := m.Children(s1)[0]
	if m.Operand(field, 0) != key || m.Operand(field, 1) != f32 {
		t.Error("Field operands must be key then type")
	}
}

func TestBuilder_LiteralInterning(t *testing.T) {
	m := NewModule("demo")
	b := NewBuilder(m)

	if b.IntLit(7) != b.IntLit(7) {
		t.Error("Equal integer literals must share one instruction")
	}
	if b.IntLit(7) == b.IntLit(8) {
		t.Error("Distinct integer literals must differ")
	}

	pi := b.FloatLit(3.25)
	if got := math.Float64frombits(m.Bits(pi)); got != 3.25 {
		t.Errorf("Expected float payload 3.25, got %g", got)
	}
	if pi != b.FloatLit(3.25) {
		t.Error("Equal float literals must share one instruction")
	}

	if b.BoolLit(true) == b.BoolLit(false) {
		t.Error("true and false must differ")
	}
	if b.StringLit("hlsl") != b.StringLit("hlsl") {
		t.Error("Equal string literals must share one instruction")
	}
}

func TestBuilder_FunctionStructure(t *testing.T) {
	m := NewModule("demo")
	b := NewBuilder(m)

	f32 := b.FloatType()
	fnType := b.FuncType(f32, f32)
	fn := b.Func(fnType)
	blk := b.AppendBlock(fn)
	b.SetInsertPoint(blk)
	p := b.Param(f32)
	sq := b.Mul(f32, p, p)
	ret := b.ReturnValue(sq)

	if m.TypeOf(fn) != fnType {
		t.Error("Function type not recorded")
	}
	if m.Parent(blk) != fn {
		t.Error("Block must be parented by its function")
	}
	children := m.Children(blk)
	if len(children) != 3 || children[0] != p || children[1] != sq || children[2] != ret {
		t.Errorf("Block children out of order: %v", children)
	}
	if m.Operand(sq, 0) != p || m.Operand(sq, 1) != p {
		t.Error("Mul operands not recorded")
	}
	if m.Operand(ret, 0) != sq {
		t.Error("Return operand not recorded")
	}
}

func TestBuilder_ModuleScopeValues(t *testing.T) {
	m := NewModule("demo")
	b := NewBuilder(m)

	f32 := b.FloatType()
	gen := b.Generic()
	spec := b.Specialize(Nil, gen, f32)

	if m.Parent(spec) != m.Root() {
		t.Error("A specialize built with no insertion block belongs at module scope")
	}
	if m.Operand(spec, 0) != gen {
		t.Error("Specialize operand 0 must be the generic")
	}

	gp := b.GlobalParam(b.ConstantBufferType(f32))
	bind := b.BindGlobalParam(gp, b.FloatLit(1))
	if m.Operand(bind, 0) != gp {
		t.Error("Bind operand 0 must be the parameter")
	}
}

func TestBuilder_Decorations(t *testing.T) {
	m := NewModule("demo")
	b := NewBuilder(m)

	fn := b.Func(Nil)
	b.Export(fn, "main#()")
	b.SetTarget(fn, TargetGLSL)
	b.MarkEntryPoint(fn, "main", StageFragment)
	b.KeepAlive(fn)
	b.SetBinding(fn, ResourceInfo{Kind: ResourceShaderResource, Index: 3, Count: 1})

	if name, ok := m.LinkageName(fn); !ok || name != "main#()" {
		t.Errorf("Expected linkage name main#(), got %q", name)
	}
	if d, ok := m.FindDecoration(fn, DecTarget); !ok || d.Text != "glsl" {
		t.Errorf("Expected target glsl, got %q", d.Text)
	}
	if d, ok := m.FindDecoration(fn, DecEntryPoint); !ok || d.Text != "main" || d.Stage != StageFragment {
		t.Error("Entry point decoration not recorded")
	}
	if !m.HasDecoration(fn, DecKeepAlive) {
		t.Error("Keep alive decoration not recorded")
	}
	if d, ok := m.FindDecoration(fn, DecBinding); !ok || d.Binding.Index != 3 {
		t.Error("Binding decoration not recorded")
	}
}
