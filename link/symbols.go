package link

import (
	"github.com/gogpu/shade/ir"
)

// Symbol is one candidate declaration registered under a linkage
// name.
type Symbol struct {
	Module *ir.Module
	Inst   ir.InstID
}

// SymbolTable maps linkage names to their candidate declarations.
// Candidates keep build order: module order first, declaration order
// within a module second. The table is read-only after construction
// and safe to share between link operations.
type SymbolTable struct {
	symbols map[string][]Symbol
	names   []string
	modules []*ir.Module
}

// BuildSymbolTable scans the given modules in order and registers
// every module-scope instruction carrying a linkage name. The scan is
// purely observational: modules are not modified and nothing fails.
func BuildSymbolTable(modules []*ir.Module) *SymbolTable {
	st := &SymbolTable{
		symbols: make(map[string][]Symbol),
		modules: modules,
	}
	for _, m := range modules {
		for _, g := range m.Globals() {
			if name, ok := m.LinkageName(g); ok {
				st.add(name, Symbol{Module: m, Inst: g})
			}
		}
	}
	return st
}

func (st *SymbolTable) add(name string, s Symbol) {
	if _, exists := st.symbols[name]; !exists {
		st.names = append(st.names, name)
	}
	st.symbols[name] = append(st.symbols[name], s)
}

// Lookup returns the candidates registered under name in build order.
// The returned slice aliases table storage and must not be mutated.
func (st *SymbolTable) Lookup(name string) []Symbol {
	return st.symbols[name]
}

// Names returns every registered linkage name in first-seen order.
func (st *SymbolTable) Names() []string {
	return st.names
}

// Len returns the number of distinct linkage names.
func (st *SymbolTable) Len() int {
	return len(st.names)
}

// Modules returns the scanned modules in build order.
func (st *SymbolTable) Modules() []*ir.Module {
	return st.modules
}
