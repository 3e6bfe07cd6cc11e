package diag

// Error code constants organized by phase. Each constant names a specific
// diagnosable condition; see spec §7 for the taxonomy these mirror.
const (
	// Lexical errors (LEX###)
	LEX001 = "LEX001" // unknown character
	LEX002 = "LEX002" // unterminated string literal
	LEX003 = "LEX003" // unterminated block comment
	LEX004 = "LEX004" // malformed numeric literal

	// Syntactic errors (PAR###)
	PAR001 = "PAR001" // unexpected token
	PAR002 = "PAR002" // missing closing delimiter
	PAR003 = "PAR003" // malformed declaration
	PAR004 = "PAR004" // malformed statement

	// Semantic — typing errors (TYP###)
	TYP001 = "TYP001" // type mismatch
	TYP002 = "TYP002" // undefined identifier
	TYP003 = "TYP003" // wrong arity
	TYP004 = "TYP004" // unknown field
	TYP005 = "TYP005" // unknown method
	TYP006 = "TYP006" // no constructor/destructor signature conformance
	TYP007 = "TYP007" // duplicate argument binding / unknown named argument
	TYP008 = "TYP008" // missing required argument

	// Semantic — mutability errors (MUT###)
	MUT001 = "MUT001" // assignment to immutable binding
	MUT002 = "MUT002" // mut on a non-pointer-eligible target

	// Semantic — memory errors (MEM###)
	MEM001 = "MEM001" // use after free
	MEM002 = "MEM002" // pointer arithmetic
	MEM003 = "MEM003" // array index out of range (constant)
	MEM004 = "MEM004" // free of a non-owning binding
	MEM005 = "MEM005" // returning a still heap-owning pointer (warning)

	// Semantic — control errors (CTL###)
	CTL001 = "CTL001" // missing return on a non-void path

	// Code generation internal errors (GEN###) — only on malformed input
	// reaching the emitter; never produced from well-typed programs.
	GEN001 = "GEN001" // internal: unsupported node reached emitter
)
