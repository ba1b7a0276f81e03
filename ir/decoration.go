package ir

// DecorationKind enumerates decoration flavors.
type DecorationKind uint8

const (
	// DecExport marks a module-scope value as a definition offered to
	// other modules. Text carries the linkage name.
	DecExport DecorationKind = iota + 1

	// DecImport marks a module-scope value as a reference to a
	// definition expected from another module. Text carries the
	// linkage name.
	DecImport

	// DecTarget restricts a definition to one output target. Text
	// carries the canonical target name.
	DecTarget

	// DecEntryPoint marks a function as a pipeline entry point. Text
	// carries the entry point name, Stage its shader stage.
	DecEntryPoint

	// DecKeepAlive protects an instruction from elimination.
	DecKeepAlive

	// DecLayout attaches a computed resource layout.
	DecLayout

	// DecBinding records an explicit register claim from the source
	// program.
	DecBinding
)

// Decoration is metadata attached to an instruction. Which fields are
// meaningful depends on Kind.
type Decoration struct {
	Kind    DecorationKind
	Text    string
	Stage   Stage
	Layout  *VarLayout
	Binding *ResourceInfo
}

// ResourceKind classifies the register class a resource consumes.
type ResourceKind uint8

const (
	ResourceConstantBuffer ResourceKind = iota + 1 // b registers
	ResourceShaderResource                         // t registers
	ResourceUnorderedAccess                        // u registers
	ResourceSampler                                // s registers
	ResourceVaryingInput
	ResourceVaryingOutput
	ResourceUniform // bytes within an enclosing buffer
)

// Register returns the register class letter used in HLSL register
// binding syntax, or "" for kinds without a register class.
func (k ResourceKind) Register() string {
	switch k {
	case ResourceConstantBuffer:
		return "b"
	case ResourceShaderResource:
		return "t"
	case ResourceUnorderedAccess:
		return "u"
	case ResourceSampler:
		return "s"
	}
	return ""
}

// String returns a short name for diagnostics.
func (k ResourceKind) String() string {
	switch k {
	case ResourceConstantBuffer:
		return "constant_buffer"
	case ResourceShaderResource:
		return "shader_resource"
	case ResourceUnorderedAccess:
		return "unordered_access"
	case ResourceSampler:
		return "sampler"
	case ResourceVaryingInput:
		return "varying_input"
	case ResourceVaryingOutput:
		return "varying_output"
	case ResourceUniform:
		return "uniform"
	}
	return "unknown"
}

// ResourceInfo is one allocated register range.
type ResourceInfo struct {
	Kind  ResourceKind
	Space uint32
	Index uint32
	Count uint32
}

// VarLayout records where a value lives for one target. Layouts are
// computed once and shared by pointer; they are not mutated after
// attachment.
type VarLayout struct {
	Resources []ResourceInfo
}

// Find returns the resource range of the given kind, if present.
func (l *VarLayout) Find(kind ResourceKind) (ResourceInfo, bool) {
	for _, r := range l.Resources {
		if r.Kind == kind {
			return r, true
		}
	}
	return ResourceInfo{}, false
}
