package polars

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"reflect"
	"runtime"
	"sync"
)

// ============================================================================
// Apply Inefficiency Advisory
// ============================================================================
//
// Apply is often reached for out of habit when a kernel or expression
// would do the same work vectorized. Before executing a user function
// we locate its source with runtime.FuncForPC, parse the enclosing
// file, and look at the function literal's body. When the body is a
// single trivial operation we emit a warning naming the faster
// equivalent. The inspection is best effort: any failure to locate,
// parse or classify stays silent and never affects the apply itself.

var advisoryCache struct {
	sync.Mutex
	files map[string]*ast.File
	fset  *token.FileSet
}

func inspectApplyFunc(fn interface{}) {
	defer func() {
		// Inspection must never take down an apply.
		_ = recover()
	}()

	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return
	}
	rf := runtime.FuncForPC(v.Pointer())
	if rf == nil {
		return
	}
	file, line := rf.FileLine(v.Pointer())
	if file == "" || line <= 0 {
		return
	}

	lit := findFuncLit(file, line)
	if lit == nil {
		return
	}
	if hint := classifyFuncLit(lit); hint != "" {
		emitWarning(fmt.Sprintf(
			"apply of a trivial function at %s:%d; %s is vectorized and much faster", file, line, hint))
	}
}

// findFuncLit parses file (cached) and returns the function literal
// declared on the given line, or nil.
func findFuncLit(file string, line int) *ast.FuncLit {
	advisoryCache.Lock()
	defer advisoryCache.Unlock()
	if advisoryCache.files == nil {
		advisoryCache.files = make(map[string]*ast.File)
		advisoryCache.fset = token.NewFileSet()
	}
	parsed, ok := advisoryCache.files[file]
	if !ok {
		var err error
		parsed, err = parser.ParseFile(advisoryCache.fset, file, nil, parser.SkipObjectResolution)
		if err != nil {
			return nil
		}
		advisoryCache.files[file] = parsed
	}

	var found *ast.FuncLit
	ast.Inspect(parsed, func(n ast.Node) bool {
		if found != nil {
			return false
		}
		if lit, ok := n.(*ast.FuncLit); ok {
			if advisoryCache.fset.Position(lit.Pos()).Line == line {
				found = lit
				return false
			}
		}
		return true
	})
	return found
}

// classifyFuncLit recognizes single-statement bodies with a kernel or
// expression equivalent and returns the suggestion, or "".
func classifyFuncLit(lit *ast.FuncLit) string {
	if lit.Body == nil || len(lit.Body.List) != 1 {
		return ""
	}
	ret, ok := lit.Body.List[0].(*ast.ReturnStmt)
	if !ok || len(ret.Results) == 0 {
		return ""
	}
	expr := ret.Results[0]

	if bin, ok := expr.(*ast.BinaryExpr); ok {
		if hint := classifyBinary(bin, paramNames(lit)); hint != "" {
			return hint
		}
	}
	if call, ok := expr.(*ast.CallExpr); ok {
		if name := calledName(call); name != "" && len(call.Args) == 1 {
			if isParamIdent(call.Args[0], paramNames(lit)) {
				return fmt.Sprintf("Eval with an expression wrapping %s, or a native kernel", name)
			}
		}
	}
	return ""
}

func classifyBinary(bin *ast.BinaryExpr, params map[string]bool) string {
	var method string
	switch bin.Op {
	case token.ADD:
		method = "Add"
	case token.SUB:
		method = "Sub"
	case token.MUL:
		method = "Mul"
	case token.QUO:
		method = "Div"
	default:
		return ""
	}
	// One side the parameter, the other a literal constant.
	var litSide ast.Expr
	switch {
	case isParamIdent(bin.X, params):
		litSide = bin.Y
	case isParamIdent(bin.Y, params):
		litSide = bin.X
	default:
		return ""
	}
	if basic, ok := litSide.(*ast.BasicLit); ok {
		return fmt.Sprintf("Eval(Element().%s(Lit(%s)))", method, basic.Value)
	}
	return ""
}

// paramNames collects the identifiers bound by the literal's
// parameter list.
func paramNames(lit *ast.FuncLit) map[string]bool {
	out := make(map[string]bool)
	if lit.Type.Params == nil {
		return out
	}
	for _, field := range lit.Type.Params.List {
		for _, name := range field.Names {
			out[name.Name] = true
		}
	}
	return out
}

func isParamIdent(e ast.Expr, params map[string]bool) bool {
	// Unwrap the `v.(T)` type assertion Apply callbacks typically
	// start with.
	if ta, ok := e.(*ast.TypeAssertExpr); ok {
		e = ta.X
	}
	ident, ok := e.(*ast.Ident)
	return ok && params[ident.Name]
}

// calledName renders the callee of a call expression, e.g. math.Abs.
func calledName(call *ast.CallExpr) string {
	switch fn := call.Fun.(type) {
	case *ast.Ident:
		return fn.Name
	case *ast.SelectorExpr:
		if pkg, ok := fn.X.(*ast.Ident); ok {
			return pkg.Name + "." + fn.Sel.Name
		}
	}
	return ""
}
