package catalog

import (
	"fmt"
	"reflect"

	"github.com/google/cel-go/cel"
)

// Predicate is a compiled CEL expression over a single parameter.
type Predicate struct {
	expr    string
	param   Parameter
	program cel.Program
}

func compilePredicate(param Parameter, expr string) (*Predicate, error) {
	var varType *cel.Type
	switch param.Type {
	case ParamInt:
		varType = cel.IntType
	case ParamString:
		varType = cel.StringType
	default:
		return nil, fmt.Errorf("unsupported parameter type %q", param.Type)
	}

	env, err := cel.NewEnv(cel.Variable(param.Name, varType))
	if err != nil {
		return nil, fmt.Errorf("failed to create expression environment: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("type-check error: %w", issues.Err())
	}
	if !reflect.DeepEqual(ast.OutputType(), cel.BoolType) {
		return nil, fmt.Errorf("expression must evaluate to bool, got %v", ast.OutputType())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program construction error: %w", err)
	}

	return &Predicate{expr: expr, param: param, program: prg}, nil
}

// Expression returns the source text of the predicate.
func (p *Predicate) Expression() string {
	return p.expr
}

// Eval runs the predicate with value bound to its parameter.
func (p *Predicate) Eval(value interface{}) (bool, error) {
	out, _, err := p.program.Eval(map[string]interface{}{p.param.Name: value})
	if err != nil {
		return false, fmt.Errorf("evaluating %q: %w", p.expr, err)
	}
	matched, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("evaluating %q: non-bool result %v", p.expr, out.Value())
	}
	return matched, nil
}
