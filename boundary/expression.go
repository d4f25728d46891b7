package boundary

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/notargets/gohp/utils"
)

var lhsName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Expression is a compiled boundary function of the form "u = f(x,y,z,t)".
// Named parameters are available to the right hand side. An Expression holds
// its own evaluation environment and must not be shared between goroutines.
type Expression struct {
	Source string
	Name   string
	Rhs    string
	prog   *vm.Program
	env    map[string]any
}

func mathEnv() map[string]any {
	return map[string]any{
		"x": 0., "y": 0., "z": 0., "t": 0.,
		"pi":   math.Pi,
		"sin":  math.Sin,
		"cos":  math.Cos,
		"tan":  math.Tan,
		"exp":  math.Exp,
		"log":  math.Log,
		"sqrt": math.Sqrt,
		"pow":  math.Pow,
		"atan": math.Atan,
		"sinh": math.Sinh,
		"cosh": math.Cosh,
		"tanh": math.Tanh,
	}
}

// NewExpression compiles src. A missing '=' or a malformed right hand side
// returns an error wrapping utils.ErrBadExpression.
func NewExpression(src string, params map[string]float64) (ex *Expression, err error) {
	lhs, rhs, found := strings.Cut(src, "=")
	if !found {
		err = fmt.Errorf("%w: %q has no '='", utils.ErrBadExpression, src)
		return
	}
	lhs, rhs = strings.TrimSpace(lhs), strings.TrimSpace(rhs)
	if !lhsName.MatchString(lhs) || len(rhs) == 0 {
		err = fmt.Errorf("%w: %q is not of the form \"u = f(x,y,z,t)\"", utils.ErrBadExpression, src)
		return
	}
	ex = &Expression{Source: src, Name: lhs, Rhs: rhs, env: mathEnv()}
	for k, v := range params {
		ex.env[k] = v
	}
	if ex.prog, err = expr.Compile(rhs, expr.Env(ex.env), expr.AsFloat64()); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", utils.ErrBadExpression, src, err)
	}
	return
}

// Eval evaluates the expression at point x and time t
func (ex *Expression) Eval(x [3]float64, t float64) (val float64, err error) {
	ex.env["x"], ex.env["y"], ex.env["z"], ex.env["t"] = x[0], x[1], x[2], t
	var out any
	if out, err = expr.Run(ex.prog, ex.env); err != nil {
		err = fmt.Errorf("evaluating %q: %w", ex.Source, err)
		return
	}
	val = out.(float64)
	return
}

// Sample evaluates the expression at every point of x. A nil coordinate
// array is taken as zero.
func (ex *Expression) Sample(x [3][]float64, t float64, out []float64) (err error) {
	for ind := range out {
		var xp [3]float64
		for d := range xp {
			if x[d] != nil {
				xp[d] = x[d][ind]
			}
		}
		if out[ind], err = ex.Eval(xp, t); err != nil {
			return
		}
	}
	return
}
