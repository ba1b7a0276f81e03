package ir

import (
	"testing"
)

func TestNewModule(t *testing.T) {
	m := NewModule("demo")

	if m.Root() == Nil {
		t.Fatal("Expected a root instruction")
	}
	if m.Op(m.Root()) != OpModule {
		t.Errorf("Expected root op module, got %s", m.Op(m.Root()))
	}
	if m.Count() != 1 {
		t.Errorf("Expected 1 live instruction, got %d", m.Count())
	}
	if len(m.Globals()) != 0 {
		t.Errorf("Expected no globals, got %d", len(m.Globals()))
	}
	if m.Valid(Nil) {
		t.Error("Nil must not be a valid reference")
	}
}

func TestModule_AppendChild(t *testing.T) {
	m := NewModule("demo")

	a := m.NewInst(OpFunc, Nil)
	b := m.NewInst(OpFunc, Nil)
	m.AppendChild(m.Root(), a)
	m.AppendChild(m.Root(), b)

	globals := m.Globals()
	if len(globals) != 2 || globals[0] != a || globals[1] != b {
		t.Errorf("Expected globals [%d %d], got %v", a, b, globals)
	}
	if m.Parent(a) != m.Root() {
		t.Errorf("Expected parent %d, got %d", m.Root(), m.Parent(a))
	}
}

func TestModule_MoveToBack(t *testing.T) {
	m := NewModule("demo")

	a := m.NewInst(OpFunc, Nil)
	b := m.NewInst(OpFunc, Nil)
	c := m.NewInst(OpFunc, Nil)
	m.AppendChild(m.Root(), a)
	m.AppendChild(m.Root(), b)
	m.AppendChild(m.Root(), c)

	m.MoveToBack(a)

	globals := m.Globals()
	if globals[0] != b || globals[1] != c || globals[2] != a {
		t.Errorf("Expected order [%d %d %d], got %v", b, c, a, globals)
	}

	// Moving the last child is a no-op.
	m.MoveToBack(a)
	if m.Globals()[2] != a {
		t.Error("Expected a to stay last")
	}
}

func TestModule_LinkageName(t *testing.T) {
	m := NewModule("demo")
	bld := NewBuilder(m)

	exported := bld.Func(Nil)
	bld.Export(exported, "helper#(f)")

	imported := bld.Func(Nil)
	bld.Import(imported, "external#(f)")

	plain := bld.Func(Nil)

	if name, ok := m.LinkageName(exported); !ok || name != "helper#(f)" {
		t.Errorf("Expected linkage name helper#(f), got %q ok=%v", name, ok)
	}
	if !m.IsExported(exported) {
		t.Error("Expected export decoration")
	}
	if name, ok := m.LinkageName(imported); !ok || name != "external#(f)" {
		t.Errorf("Expected linkage name external#(f), got %q ok=%v", name, ok)
	}
	if m.IsExported(imported) {
		t.Error("Import must not count as exported")
	}
	if _, ok := m.LinkageName(plain); ok {
		t.Error("Expected no linkage name on an undecorated function")
	}
}

func TestModule_DefinitionsAndBlocks(t *testing.T) {
	m := NewModule("demo")
	bld := NewBuilder(m)

	decl := bld.Func(Nil)
	if m.IsDefinition(decl) {
		t.Error("A function without blocks is a declaration")
	}
	if m.FirstBlock(decl) != Nil {
		t.Error("Expected no first block on a declaration")
	}

	def := bld.Func(Nil)
	blk := bld.AppendBlock(def)
	if !m.IsDefinition(def) {
		t.Error("A function with a block is a definition")
	}
	if m.FirstBlock(def) != blk {
		t.Errorf("Expected first block %d, got %d", blk, m.FirstBlock(def))
	}

	gv := bld.GlobalVar(bld.FloatType())
	if !m.IsDefinition(gv) {
		t.Error("Non-code instructions count as definitions")
	}
}

func TestModule_BlockParams(t *testing.T) {
	m := NewModule("demo")
	bld := NewBuilder(m)

	f32 := bld.FloatType()
	fn := bld.Func(bld.FuncType(f32, f32, f32))
	blk := bld.AppendBlock(fn)
	bld.SetInsertPoint(blk)
	p0 := bld.Param(f32)
	p1 := bld.Param(f32)
	sum := bld.Add(f32, p0, p1)
	bld.ReturnValue(sum)

	params := m.BlockParams(blk)
	if len(params) != 2 || params[0] != p0 || params[1] != p1 {
		t.Errorf("Expected params [%d %d], got %v", p0, p1, params)
	}

	term := m.Terminator(blk)
	if m.Op(term) != OpReturnValue {
		t.Errorf("Expected return_value terminator, got %s", m.Op(term))
	}
}

func TestTargetNames(t *testing.T) {
	for _, target := range []Target{TargetHLSL, TargetGLSL, TargetC, TargetCPP} {
		back, ok := TargetFromName(target.Name())
		if !ok || back != target {
			t.Errorf("Target %q did not round-trip", target.Name())
		}
	}
	if _, ok := TargetFromName("fortran"); ok {
		t.Error("Expected unknown target name to fail")
	}
}

func TestStageNames(t *testing.T) {
	for _, stage := range []Stage{StageVertex, StageFragment, StageCompute} {
		back, ok := StageFromName(stage.String())
		if !ok || back != stage {
			t.Errorf("Stage %q did not round-trip", stage)
		}
	}
	if _, ok := StageFromName("geometry"); ok {
		t.Error("Expected unknown stage name to fail")
	}
}
