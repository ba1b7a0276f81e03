package link

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/gogpu/shade/ir"
)

// phase tracks the strict ordering of one link operation. Symbol
// lookups are legal only while cloning; once finalizing begins the
// destination module is complete and only local passes run.
type phase uint8

const (
	phaseCollecting phase = iota
	phaseCloning
	phaseFinalizing
)

// EntryPointLayout carries the layout records computed for one entry
// point: one for the function itself and one per parameter in
// positional order.
type EntryPointLayout struct {
	Self   *ir.VarLayout
	Params []*ir.VarLayout
}

// Options configure one link operation.
type Options struct {
	// Target decides which target-restricted candidates win during
	// selection.
	Target ir.Target

	// EntryLayout, when set, is attached to the linked entry function
	// and its parameters.
	EntryLayout *EntryPointLayout

	// GlobalLayouts maps linkage names of global shader parameters to
	// their computed layouts.
	GlobalLayouts map[string]*ir.VarLayout

	// Logger receives progress and debug reporting. Defaults to the
	// standard logger.
	Logger logrus.FieldLogger

	// DebugChecks enables consistency scans over the linked module:
	// duplicate linkage names and structural validation.
	DebugChecks bool
}

// Linker threads the state of one link operation: the shared symbol
// table, the destination module under construction, the root clone
// environment and the in-progress markers for circularity detection.
type Linker struct {
	symbols    *SymbolTable
	opts       Options
	dst        *ir.Module
	rootEnv    *env
	inProgress map[string]bool
	phase      phase
	logger     logrus.FieldLogger
}

// LinkEntryPoint clones the transitive closure of the entry point
// registered under entryName into a fresh module, selecting
// candidates for opts.Target and eagerly reducing specializations.
// It returns the destination module and the linked entry function.
//
// Source modules are never modified; on failure the symbol table is
// left exactly as built and the partial destination is discarded.
func LinkEntryPoint(symbols *SymbolTable, entryName string, opts Options) (*ir.Module, ir.InstID, error) {
	if symbols == nil {
		return nil, ir.Nil, NewError(ErrInternalError, "nil symbol table")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	l := &Linker{
		symbols:    symbols,
		opts:       opts,
		dst:        ir.NewModule("linked:" + entryName),
		rootEnv:    newEnv(nil),
		inProgress: make(map[string]bool),
		phase:      phaseCloning,
		logger:     logger.WithField("component", "linker"),
	}

	l.logger.WithFields(logrus.Fields{
		"entry":  entryName,
		"target": opts.Target.Name(),
	}).Debug("linking entry point")

	entry, err := l.cloneSymbol(l.rootEnv, entryName)
	if err != nil {
		return nil, ir.Nil, err
	}

	for l.dst.Op(entry) == ir.OpSpecialize {
		if entry, err = l.specializeGeneric(entry); err != nil {
			return nil, ir.Nil, err
		}
		l.logger.WithField("entry", entryName).Debug("specialized entry point")
	}
	if l.dst.Op(entry) != ir.OpFunc {
		return nil, ir.Nil, NewSymbolError(ErrBadEntryPoint,
			fmt.Sprintf("entry point reduced to %s, expected a function", l.dst.Op(entry)), entryName)
	}

	if !l.dst.HasDecoration(entry, ir.DecKeepAlive) {
		l.dst.Decorate(entry, ir.Decoration{Kind: ir.DecKeepAlive})
	}

	if err := l.applyEntryLayout(entry, entryName); err != nil {
		return nil, ir.Nil, err
	}

	if err := l.sweepGlobalBindings(); err != nil {
		return nil, ir.Nil, err
	}

	l.phase = phaseFinalizing
	if opts.DebugChecks {
		if err := l.runDebugChecks(); err != nil {
			return nil, ir.Nil, err
		}
	}

	l.logger.WithFields(logrus.Fields{
		"entry": entryName,
		"insts": l.dst.Count(),
	}).Debug("linked entry point")
	return l.dst, entry, nil
}

// applyEntryLayout attaches the computed layout to the entry function
// and, positionally, to its parameters.
func (l *Linker) applyEntryLayout(entry ir.InstID, entryName string) error {
	layout := l.opts.EntryLayout
	if layout == nil {
		return nil
	}
	if layout.Self != nil && !l.dst.HasDecoration(entry, ir.DecLayout) {
		l.dst.Decorate(entry, ir.Decoration{Kind: ir.DecLayout, Layout: layout.Self})
	}

	block := l.dst.FirstBlock(entry)
	if block == ir.Nil {
		return nil
	}
	for i, p := range l.dst.BlockParams(block) {
		if i >= len(layout.Params) {
			return NewSymbolError(ErrBadEntryPoint,
				fmt.Sprintf("entry point has more than %d parameters covered by its layout", len(layout.Params)), entryName)
		}
		if layout.Params[i] != nil {
			l.dst.Decorate(p, ir.Decoration{Kind: ir.DecLayout, Layout: layout.Params[i]})
		}
	}
	return nil
}

// sweepGlobalBindings clones every bind-global-param instruction from
// every source module, whether or not the entry point reaches it. The
// bindings describe how the runtime supplies global parameters, so
// they survive linking unconditionally.
func (l *Linker) sweepGlobalBindings() error {
	swept := 0
	for _, m := range l.symbols.Modules() {
		for _, g := range m.Globals() {
			if m.Op(g) != ir.OpBindGlobalParam {
				continue
			}
			if _, err := l.cloneValue(l.rootEnv, m, g); err != nil {
				return err
			}
			swept++
		}
	}
	if swept > 0 {
		l.logger.WithField("bindings", swept).Debug("swept global bindings")
	}
	return nil
}

// runDebugChecks scans the finished module for defects that indicate
// a linker bug: one linkage name on two instructions, or structural
// damage such as dangling references.
func (l *Linker) runDebugChecks() error {
	seen := make(map[string]ir.InstID)
	for _, g := range l.dst.Globals() {
		name, ok := l.dst.LinkageName(g)
		if !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			l.logger.WithField("symbol", name).Error("duplicate linkage name in linked module")
			return NewSymbolError(ErrDuplicateSymbol, "linkage name on two instructions", name)
		}
		seen[name] = g
	}

	errs, err := ir.Validate(l.dst)
	if err != nil {
		return NewError(ErrInternalError, err.Error())
	}
	if len(errs) > 0 {
		l.logger.WithField("defects", len(errs)).Error("linked module failed validation")
		return NewError(ErrInternalError, errs[0].Error())
	}
	return nil
}
