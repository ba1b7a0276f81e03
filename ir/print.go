package ir

import (
	"math"
	"strconv"
	"strings"
)

// Disassemble renders m as stable text. Equal graphs produce equal
// text, so the output is usable for comparing transformation results
// as well as for debugging.
func Disassemble(m *Module) string {
	p := &printer{
		m:     m,
		names: make(map[InstID]string, m.Count()),
	}
	for _, g := range m.Globals() {
		p.assign(g)
	}

	p.out.WriteString("module \"")
	p.out.WriteString(m.Name)
	p.out.WriteString("\"\n")
	for _, g := range m.Globals() {
		p.printInst(g, 0)
	}
	return p.out.String()
}

type printer struct {
	m     *Module
	out   strings.Builder
	names map[InstID]string
	next  int
}

// assign numbers id and its children in depth-first order, so forward
// block references print resolved names.
func (p *printer) assign(id InstID) {
	p.next++
	p.names[id] = "%" + strconv.Itoa(p.next)
	for _, c := range p.m.Children(id) {
		p.assign(c)
	}
}

func (p *printer) ref(id InstID) string {
	if id == Nil {
		return "null"
	}
	if name, ok := p.names[id]; ok {
		return name
	}
	return "%?"
}

func (p *printer) printInst(id InstID, indent int) {
	for i := 0; i < indent; i++ {
		p.out.WriteString("  ")
	}
	p.out.WriteString(p.names[id])
	p.out.WriteString(" = ")

	op := p.m.Op(id)
	p.out.WriteString(op.String())

	switch op {
	case OpBoolLit:
		if p.m.Bits(id) != 0 {
			p.out.WriteString(" true")
		} else {
			p.out.WriteString(" false")
		}
	case OpIntLit:
		p.out.WriteByte(' ')
		p.out.WriteString(strconv.FormatInt(int64(p.m.Bits(id)), 10))
	case OpFloatLit:
		p.out.WriteByte(' ')
		p.out.WriteString(strconv.FormatFloat(math.Float64frombits(p.m.Bits(id)), 'g', -1, 64))
	case OpStringLit, OpStructKey, OpIntrinsicCall:
		p.out.WriteString(" \"")
		p.out.WriteString(p.m.Text(id))
		p.out.WriteByte('"')
	}

	if operands := p.m.Operands(id); len(operands) > 0 {
		p.out.WriteString(" (")
		for i, o := range operands {
			if i > 0 {
				p.out.WriteString(", ")
			}
			p.out.WriteString(p.ref(o))
		}
		p.out.WriteByte(')')
	}

	if typ := p.m.TypeOf(id); typ != Nil {
		p.out.WriteString(" : ")
		p.out.WriteString(p.ref(typ))
	}

	for _, d := range p.m.Decorations(id) {
		p.printDecoration(d)
	}

	if children := p.m.Children(id); len(children) > 0 {
		p.out.WriteString(" {\n")
		for _, c := range children {
			p.printInst(c, indent+1)
		}
		for i := 0; i < indent; i++ {
			p.out.WriteString("  ")
		}
		p.out.WriteByte('}')
	}
	p.out.WriteByte('\n')
}

func (p *printer) printDecoration(d Decoration) {
	switch d.Kind {
	case DecExport:
		p.out.WriteString(" [export \"" + d.Text + "\"]")
	case DecImport:
		p.out.WriteString(" [import \"" + d.Text + "\"]")
	case DecTarget:
		p.out.WriteString(" [target " + d.Text + "]")
	case DecEntryPoint:
		p.out.WriteString(" [entry_point \"" + d.Text + "\" " + d.Stage.String() + "]")
	case DecKeepAlive:
		p.out.WriteString(" [keep_alive]")
	case DecLayout:
		p.out.WriteString(" [layout ")
		p.printResources(d.Layout.Resources)
		p.out.WriteByte(']')
	case DecBinding:
		p.out.WriteString(" [binding ")
		p.printResources([]ResourceInfo{*d.Binding})
		p.out.WriteByte(']')
	}
}

func (p *printer) printResources(resources []ResourceInfo) {
	for i, r := range resources {
		if i > 0 {
			p.out.WriteByte(',')
		}
		p.out.WriteString(r.Kind.String())
		p.out.WriteByte(':')
		p.out.WriteString(strconv.FormatUint(uint64(r.Space), 10))
		p.out.WriteByte(':')
		p.out.WriteString(strconv.FormatUint(uint64(r.Index), 10))
		p.out.WriteByte(':')
		p.out.WriteString(strconv.FormatUint(uint64(r.Count), 10))
	}
}
