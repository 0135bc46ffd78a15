package matching

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ExprEnv is the environment a request expression is evaluated in. Header
// names are lower-cased; Header and Query keep the first value of each key.
type ExprEnv struct {
	Method string            `expr:"method"`
	URI    string            `expr:"uri"`
	Scheme string            `expr:"scheme"`
	Host   string            `expr:"host"`
	Path   string            `expr:"path"`
	Query  map[string]string `expr:"query"`
	Header map[string]string `expr:"header"`
	Body   string            `expr:"body"`
	JSON   any               `expr:"json"`
}

// Expression is a compiled boolean expr-lang program.
type Expression struct {
	source  string
	program *vm.Program
}

// CompileExpression type-checks src against ExprEnv and requires a boolean
// result.
func CompileExpression(src string) (*Expression, error) {
	if src == "" {
		return nil, fmt.Errorf("empty expression")
	}
	program, err := expr.Compile(src, expr.Env(ExprEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("invalid expression %q: %w", src, err)
	}
	return &Expression{source: src, program: program}, nil
}

// String returns the expression source.
func (e *Expression) String() string {
	return e.source
}

// Eval runs the program against env.
func (e *Expression) Eval(env ExprEnv) (bool, error) {
	out, err := expr.Run(e.program, env)
	if err != nil {
		return false, fmt.Errorf("evaluating %q: %w", e.source, err)
	}
	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("evaluating %q: result is %T, not bool", e.source, out)
	}
	return b, nil
}
