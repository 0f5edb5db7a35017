// Copyright © 2018 The ELPS authors

package evallib

import (
	"math"

	"github.com/luthersystems/reval/eval"
)

const numberTypes = "integer! decimal!"

func mathNatives() []*eval.Native {
	binary := eval.Formals("value1 "+numberTypes, "value2 "+numberTypes)
	compare := eval.Formals("value1", "value2")
	return []*eval.Native{
		{Name: "add", Formals: binary, Fun: arith(opAdd),
			Doc: `Returns the sum of two numbers.`},
		{Name: "subtract", Formals: binary, Fun: arith(opSub),
			Doc: `Returns value1 minus value2.`},
		{Name: "multiply", Formals: binary, Fun: arith(opMul),
			Doc: `Returns the product of two numbers.`},
		{Name: "divide", Formals: binary, Fun: arith(opDiv),
			Doc: `Returns value1 divided by value2.  The result is an
			integer when the division is exact and both arguments are
			integers, otherwise it is a decimal.`},
		{Name: "+", Formals: binary, Fun: arith(opAdd), Enfix: true},
		{Name: "-", Formals: binary, Fun: arith(opSub), Enfix: true},
		{Name: "*", Formals: binary, Fun: arith(opMul), Enfix: true},
		{Name: eval.SymSlash, Formals: binary, Fun: arith(opDiv), Enfix: true},
		{Name: "=", Formals: compare, Fun: nativeEqual, Enfix: true,
			Doc: `Returns true if the values are equal.  Integers and
			decimals compare by numeric value.`},
		{Name: "<>", Formals: compare, Fun: nativeNotEqual, Enfix: true},
		{Name: "<", Formals: compare, Fun: ordered(func(c int) bool { return c < 0 }), Enfix: true},
		{Name: ">", Formals: compare, Fun: ordered(func(c int) bool { return c > 0 }), Enfix: true},
		{Name: "<=", Formals: compare, Fun: ordered(func(c int) bool { return c <= 0 }), Enfix: true},
		{Name: ">=", Formals: compare, Fun: ordered(func(c int) bool { return c >= 0 }), Enfix: true},
		{Name: "not", Formals: eval.Formals("value"), Fun: nativeNot,
			Doc: `Returns true if value is blank or false.`},
	}
}

type arithOp uint8

const (
	opAdd arithOp = iota
	opSub
	opMul
	opDiv
)

func arith(op arithOp) eval.NativeFunc {
	return func(rt *eval.Runtime, f *eval.Frame) (bool, error) {
		a, b := f.Args[0], f.Args[1]
		v, err := compute(op, a, b)
		if err != nil {
			return false, err
		}
		*f.Out = v
		return false, nil
	}
}

func compute(op arithOp, a, b eval.Value) (eval.Value, error) {
	if a.Kind == eval.KindInteger && b.Kind == eval.KindInteger {
		x, y := a.Int, b.Int
		switch op {
		case opAdd:
			z := x + y
			if (z > x) != (y > 0) {
				return eval.End(), eval.Errorf(eval.ErrInvalidArgument, "integer overflow: %d + %d", x, y)
			}
			return eval.Integer(z), nil
		case opSub:
			z := x - y
			if (z < x) != (y > 0) {
				return eval.End(), eval.Errorf(eval.ErrInvalidArgument, "integer overflow: %d - %d", x, y)
			}
			return eval.Integer(z), nil
		case opMul:
			if x != 0 && y != 0 {
				z := x * y
				if z/y != x || (x == -1 && y == math.MinInt64) || (y == -1 && x == math.MinInt64) {
					return eval.End(), eval.Errorf(eval.ErrInvalidArgument, "integer overflow: %d * %d", x, y)
				}
				return eval.Integer(z), nil
			}
			return eval.Integer(0), nil
		case opDiv:
			if y == 0 {
				return eval.End(), eval.Errorf(eval.ErrInvalidArgument, "attempt to divide by zero")
			}
			if x%y == 0 && !(x == math.MinInt64 && y == -1) {
				return eval.Integer(x / y), nil
			}
		}
	}
	x, y := toFloat(a), toFloat(b)
	switch op {
	case opAdd:
		return eval.Decimal(x + y), nil
	case opSub:
		return eval.Decimal(x - y), nil
	case opMul:
		return eval.Decimal(x * y), nil
	}
	if y == 0 {
		return eval.End(), eval.Errorf(eval.ErrInvalidArgument, "attempt to divide by zero")
	}
	return eval.Decimal(x / y), nil
}

func toFloat(v eval.Value) float64 {
	if v.Kind == eval.KindInteger {
		return float64(v.Int)
	}
	return v.Dec
}

func isNumber(v eval.Value) bool {
	return v.Kind == eval.KindInteger || v.Kind == eval.KindDecimal
}

func equalValues(a, b eval.Value) bool {
	if isNumber(a) && isNumber(b) && a.Kind != b.Kind {
		return toFloat(a) == toFloat(b)
	}
	return eval.Equal(a, b)
}

func nativeEqual(rt *eval.Runtime, f *eval.Frame) (bool, error) {
	*f.Out = eval.Logic(equalValues(f.Args[0], f.Args[1]))
	return false, nil
}

func nativeNotEqual(rt *eval.Runtime, f *eval.Frame) (bool, error) {
	*f.Out = eval.Logic(!equalValues(f.Args[0], f.Args[1]))
	return false, nil
}

func ordered(test func(c int) bool) eval.NativeFunc {
	return func(rt *eval.Runtime, f *eval.Frame) (bool, error) {
		a, b := f.Args[0], f.Args[1]
		var c int
		switch {
		case a.Kind == eval.KindInteger && b.Kind == eval.KindInteger:
			c = cmpOrdered(a.Int, b.Int)
		case isNumber(a) && isNumber(b):
			c = cmpOrdered(toFloat(a), toFloat(b))
		case a.Kind == eval.KindString && b.Kind == eval.KindString:
			c = cmpOrdered(a.Str, b.Str)
		default:
			return false, eval.Errorf(eval.ErrTypeMismatch, "cannot compare %v with %v", a.Kind, b.Kind)
		}
		*f.Out = eval.Logic(test(c))
		return false, nil
	}
}

func cmpOrdered[T int64 | float64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func nativeNot(rt *eval.Runtime, f *eval.Frame) (bool, error) {
	*f.Out = eval.Logic(!f.Args[0].IsTruthy())
	return false, nil
}
