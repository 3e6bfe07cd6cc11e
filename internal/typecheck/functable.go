package typecheck

import "github.com/shkschneider/czar/internal/ast"

// globalKey is the distinguished receiver-type key free functions are
// indexed under, per spec §3's Function table.
const globalKey = ""

// funcKey identifies one entry in the function table: a receiver type (or
// globalKey for a free function) paired with a method/function name.
type funcKey struct {
	Receiver string
	Name     string
}

// FuncTable maps (receiver_type_or_none, name) -> FnDecl, built in a
// single pre-pass over top-level items (spec §3). Extension methods (a
// free function whose first parameter is named "self") are additionally
// registered under the receiver type derived from that parameter.
type FuncTable struct {
	byKey map[funcKey]*ast.FnDecl
}

func newFuncTable() *FuncTable {
	return &FuncTable{byKey: make(map[funcKey]*ast.FnDecl)}
}

// register indexes fn under its own receiver/name key and, when fn is an
// extension method, additionally under the receiver type named by its
// first (self) parameter's declared type.
func (ft *FuncTable) register(fn *ast.FnDecl) {
	key := funcKey{Receiver: fn.ReceiverType, Name: fn.Name}
	if _, exists := ft.byKey[key]; !exists {
		// First declaration wins on duplicate names (spec §5's ordering
		// guarantee); duplicate detection itself is an open question we
		// resolve by silently keeping the first (see DESIGN.md).
		ft.byKey[key] = fn
	}
	if fn.IsExtension() {
		recv := receiverTypeName(fn.Params[0].Type)
		extKey := funcKey{Receiver: recv, Name: fn.Name}
		if _, exists := ft.byKey[extKey]; !exists {
			ft.byKey[extKey] = fn
		}
	}
}

// Lookup resolves a method or free-function call by receiver type (empty
// string for a free function) and name.
func (ft *FuncTable) Lookup(receiver, name string) (*ast.FnDecl, bool) {
	fn, ok := ft.byKey[funcKey{Receiver: receiver, Name: name}]
	return fn, ok
}

// LookupFree resolves a free (non-method) function by name.
func (ft *FuncTable) LookupFree(name string) (*ast.FnDecl, bool) {
	return ft.Lookup(globalKey, name)
}

func receiverTypeName(t ast.Type) string {
	switch tt := t.(type) {
	case *ast.Named:
		return tt.Name
	case *ast.Pointer:
		return receiverTypeName(tt.To)
	default:
		return ""
	}
}
