// internal/pkg/nacos/predicate.go
package nacos

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// Predicate 是对实例元数据的筛选条件，用 CEL 表达式描述。
// 例如: `metadata["env"] == "prod" && metadata["zone"] == "sh"`。
// 表达式在构造时编译一次，之后可以并发复用。
type Predicate struct {
	expr string
	prg  cel.Program
}

// NewPredicate 编译一个元数据筛选表达式。
func NewPredicate(expr string) (*Predicate, error) {
	env, err := cel.NewEnv(
		cel.Variable("metadata", cel.MapType(cel.StringType, cel.StringType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cel env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("invalid predicate %q: %w", expr, issues.Err())
	}
	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("predicate %q must evaluate to bool, got %s", expr, ast.OutputType())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to build predicate program: %w", err)
	}
	return &Predicate{expr: expr, prg: prg}, nil
}

// Match 对一个实例的元数据求值。
func (p *Predicate) Match(metadata map[string]string) (bool, error) {
	out, _, err := p.prg.Eval(map[string]interface{}{
		"metadata": metadata,
	})
	if err != nil {
		return false, fmt.Errorf("eval predicate %q: %w", p.expr, err)
	}
	ok, isBool := out.Value().(bool)
	if !isBool {
		return false, fmt.Errorf("predicate %q returned non-bool value", p.expr)
	}
	return ok, nil
}

func (p *Predicate) String() string {
	return p.expr
}
