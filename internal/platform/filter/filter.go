// Package filter compiles AIP-160 filter expressions into in-memory record
// predicates used by admin listings.
package filter

import (
	"fmt"
	"strings"

	"go.einride.tech/aip/filtering"
	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// FieldType is the declared type of a filterable field.
type FieldType int

const (
	TypeString FieldType = iota
	TypeInt
)

// Field declares one filterable record attribute.
type Field struct {
	Name string
	Type FieldType
}

// Record resolves a field value for the record under test. Strings resolve to
// string and ints to int64.
type Record func(field string) (any, bool)

// Predicate reports whether a record matches a compiled filter.
type Predicate func(Record) bool

// MatchAll is the predicate for an empty filter.
func MatchAll(Record) bool { return true }

// Compile parses filterStr against the declared fields. An empty filter
// compiles to MatchAll.
func Compile(filterStr string, fields ...Field) (Predicate, error) {
	if strings.TrimSpace(filterStr) == "" {
		return MatchAll, nil
	}

	options := []filtering.DeclarationOption{filtering.DeclareStandardFunctions()}
	known := make(map[string]FieldType, len(fields))
	for _, field := range fields {
		known[field.Name] = field.Type
		options = append(options, filtering.DeclareIdent(field.Name, declType(field.Type)))
	}
	decls, err := filtering.NewDeclarations(options...)
	if err != nil {
		return nil, fmt.Errorf("create declarations: %w", err)
	}

	parsed, err := filtering.ParseFilterString(filterStr, decls)
	if err != nil {
		return nil, fmt.Errorf("parse filter: %w", err)
	}
	if parsed.CheckedExpr == nil {
		return MatchAll, nil
	}
	return compileExpr(parsed.CheckedExpr.GetExpr(), known)
}

func declType(t FieldType) *expr.Type {
	switch t {
	case TypeInt:
		return filtering.TypeInt
	default:
		return filtering.TypeString
	}
}

func compileExpr(e *expr.Expr, known map[string]FieldType) (Predicate, error) {
	if e == nil {
		return MatchAll, nil
	}
	call, ok := e.GetExprKind().(*expr.Expr_CallExpr)
	if !ok {
		return nil, fmt.Errorf("unsupported expression type: %T", e.GetExprKind())
	}
	return compileCall(call.CallExpr, known)
}

func compileCall(call *expr.Expr_Call, known map[string]FieldType) (Predicate, error) {
	switch call.GetFunction() {
	case "_&&_", "AND":
		left, right, err := compileBinary(call.GetArgs(), known)
		if err != nil {
			return nil, err
		}
		return func(r Record) bool { return left(r) && right(r) }, nil
	case "_||_", "OR":
		left, right, err := compileBinary(call.GetArgs(), known)
		if err != nil {
			return nil, err
		}
		return func(r Record) bool { return left(r) || right(r) }, nil
	case "_!_", "NOT":
		if len(call.GetArgs()) != 1 {
			return nil, fmt.Errorf("NOT requires 1 argument")
		}
		inner, err := compileExpr(call.GetArgs()[0], known)
		if err != nil {
			return nil, err
		}
		return func(r Record) bool { return !inner(r) }, nil
	case "_==_", "=":
		return compileComparison("=", call.GetArgs(), known)
	case "_!=_", "!=":
		return compileComparison("!=", call.GetArgs(), known)
	case "_<_", "<":
		return compileComparison("<", call.GetArgs(), known)
	case "_<=_", "<=":
		return compileComparison("<=", call.GetArgs(), known)
	case "_>_", ">":
		return compileComparison(">", call.GetArgs(), known)
	case "_>=_", ">=":
		return compileComparison(">=", call.GetArgs(), known)
	default:
		return nil, fmt.Errorf("unsupported function: %s", call.GetFunction())
	}
}

func compileBinary(args []*expr.Expr, known map[string]FieldType) (Predicate, Predicate, error) {
	if len(args) != 2 {
		return nil, nil, fmt.Errorf("logical operator requires 2 arguments")
	}
	left, err := compileExpr(args[0], known)
	if err != nil {
		return nil, nil, err
	}
	right, err := compileExpr(args[1], known)
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

func compileComparison(op string, args []*expr.Expr, known map[string]FieldType) (Predicate, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("comparison requires 2 arguments")
	}
	ident, ok := args[0].GetExprKind().(*expr.Expr_IdentExpr)
	if !ok {
		return nil, fmt.Errorf("expected identifier, got %T", args[0].GetExprKind())
	}
	field := ident.IdentExpr.GetName()
	fieldType, ok := known[field]
	if !ok {
		return nil, fmt.Errorf("unknown field: %s", field)
	}
	constant, ok := args[1].GetExprKind().(*expr.Expr_ConstExpr)
	if !ok {
		return nil, fmt.Errorf("expected constant, got %T", args[1].GetExprKind())
	}
	want, err := constValue(constant.ConstExpr, fieldType)
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", field, err)
	}
	return func(r Record) bool {
		got, ok := r(field)
		if !ok {
			return false
		}
		return compare(op, got, want)
	}, nil
}

func constValue(c *expr.Constant, fieldType FieldType) (any, error) {
	switch kind := c.GetConstantKind().(type) {
	case *expr.Constant_StringValue:
		if fieldType != TypeString {
			return nil, fmt.Errorf("string value for non-string field")
		}
		return kind.StringValue, nil
	case *expr.Constant_Int64Value:
		if fieldType != TypeInt {
			return nil, fmt.Errorf("int value for non-int field")
		}
		return kind.Int64Value, nil
	default:
		return nil, fmt.Errorf("unsupported constant type: %T", kind)
	}
}

func compare(op string, got any, want any) bool {
	switch w := want.(type) {
	case string:
		g, ok := got.(string)
		if !ok {
			return false
		}
		return ordered(op, strings.Compare(g, w))
	case int64:
		g, ok := got.(int64)
		if !ok {
			return false
		}
		switch {
		case g < w:
			return ordered(op, -1)
		case g > w:
			return ordered(op, 1)
		default:
			return ordered(op, 0)
		}
	default:
		return false
	}
}

func ordered(op string, cmp int) bool {
	switch op {
	case "=":
		return cmp == 0
	case "!=":
		return cmp != 0
	case "<":
		return cmp < 0
	case "<=":
		return cmp <= 0
	case ">":
		return cmp > 0
	case ">=":
		return cmp >= 0
	default:
		return false
	}
}
