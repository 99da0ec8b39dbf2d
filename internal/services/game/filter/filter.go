// Package filter provides AIP-160 filter expression parsing and SQL
// translation for the admin listing endpoints.
package filter

import (
	"fmt"
	"strings"
	"time"

	"go.einride.tech/aip/filtering"
	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"

	apperrors "github.com/veilspire/gridlink/internal/platform/errors"
)

// SQLCondition represents a SQL WHERE clause fragment with parameters.
type SQLCondition struct {
	// Clause is the SQL WHERE clause (e.g., "region = ?").
	Clause string
	// Params are the positional parameters for the clause.
	Params []any
}

// Definition binds a filter surface to its declared fields and column names.
type Definition struct {
	declarations *filtering.Declarations
	columns      map[string]string
}

// CharacterDefinition declares the filterable character fields.
func CharacterDefinition() (*Definition, error) {
	decls, err := filtering.NewDeclarations(
		filtering.DeclareStandardFunctions(),
		filtering.DeclareIdent("name", filtering.TypeString),
		filtering.DeclareIdent("kind", filtering.TypeString),
		filtering.DeclareIdent("region", filtering.TypeString),
		filtering.DeclareIdent("health", filtering.TypeInt),
		filtering.DeclareIdent("balance", filtering.TypeInt),
		filtering.DeclareIdent("created_at", filtering.TypeTimestamp),
	)
	if err != nil {
		return nil, fmt.Errorf("create character declarations: %w", err)
	}
	return &Definition{
		declarations: decls,
		columns: map[string]string{
			"name":       "name",
			"kind":       "kind",
			"region":     "region",
			"health":     "health",
			"balance":    "balance",
			"created_at": "created_at",
		},
	}, nil
}

// PaymentDefinition declares the filterable payment fields.
func PaymentDefinition() (*Definition, error) {
	decls, err := filtering.NewDeclarations(
		filtering.DeclareStandardFunctions(),
		filtering.DeclareIdent("character_id", filtering.TypeString),
		filtering.DeclareIdent("region", filtering.TypeString),
		filtering.DeclareIdent("grid_txn_id", filtering.TypeString),
		filtering.DeclareIdent("amount", filtering.TypeInt),
		filtering.DeclareIdent("created_at", filtering.TypeTimestamp),
	)
	if err != nil {
		return nil, fmt.Errorf("create payment declarations: %w", err)
	}
	return &Definition{
		declarations: decls,
		columns: map[string]string{
			"character_id": "character_id",
			"region":       "region",
			"grid_txn_id":  "grid_txn_id",
			"amount":       "amount",
			"created_at":   "created_at",
		},
	}, nil
}

// Parse parses an AIP-160 filter expression and returns a SQL condition.
// Returns an empty condition for an empty filter string.
func (d *Definition) Parse(filterStr string) (SQLCondition, error) {
	if strings.TrimSpace(filterStr) == "" {
		return SQLCondition{}, nil
	}
	if d == nil || d.declarations == nil {
		return SQLCondition{}, fmt.Errorf("filter definition is not configured")
	}

	parsed, err := filtering.ParseFilterString(filterStr, d.declarations)
	if err != nil {
		return SQLCondition{}, apperrors.Wrap(apperrors.CodeFilterInvalid, "parse filter", err)
	}

	condition, err := d.translateExpr(parsed.CheckedExpr.Expr)
	if err != nil {
		return SQLCondition{}, apperrors.Wrap(apperrors.CodeFilterInvalid, "translate filter", err)
	}
	return condition, nil
}

func (d *Definition) translateExpr(e *expr.Expr) (SQLCondition, error) {
	if e == nil {
		return SQLCondition{}, nil
	}

	switch kind := e.ExprKind.(type) {
	case *expr.Expr_CallExpr:
		return d.translateCall(kind.CallExpr)
	default:
		return SQLCondition{}, fmt.Errorf("unsupported expression type: %T", kind)
	}
}

func (d *Definition) translateCall(call *expr.Expr_Call) (SQLCondition, error) {
	switch call.Function {
	case "_&&_", "AND":
		return d.translateLogical(call.Args, "AND")
	case "_||_", "OR":
		return d.translateLogical(call.Args, "OR")
	case "_==_", "=":
		return d.translateComparison(call.Args, "=")
	case "_!=_", "!=":
		return d.translateComparison(call.Args, "!=")
	case "_<_", "<":
		return d.translateComparison(call.Args, "<")
	case "_<=_", "<=":
		return d.translateComparison(call.Args, "<=")
	case "_>_", ">":
		return d.translateComparison(call.Args, ">")
	case "_>=_", ">=":
		return d.translateComparison(call.Args, ">=")
	default:
		return SQLCondition{}, fmt.Errorf("unsupported function: %s", call.Function)
	}
}

func (d *Definition) translateLogical(args []*expr.Expr, op string) (SQLCondition, error) {
	if len(args) != 2 {
		return SQLCondition{}, fmt.Errorf("%s requires 2 arguments", op)
	}

	left, err := d.translateExpr(args[0])
	if err != nil {
		return SQLCondition{}, err
	}
	right, err := d.translateExpr(args[1])
	if err != nil {
		return SQLCondition{}, err
	}

	return SQLCondition{
		Clause: fmt.Sprintf("(%s %s %s)", left.Clause, op, right.Clause),
		Params: append(left.Params, right.Params...),
	}, nil
}

func (d *Definition) translateComparison(args []*expr.Expr, op string) (SQLCondition, error) {
	if len(args) != 2 {
		return SQLCondition{}, fmt.Errorf("comparison requires 2 arguments")
	}

	field, err := extractFieldName(args[0])
	if err != nil {
		return SQLCondition{}, err
	}
	column, ok := d.columns[field]
	if !ok {
		return SQLCondition{}, fmt.Errorf("unknown field: %s", field)
	}

	value, err := extractValue(args[1])
	if err != nil {
		return SQLCondition{}, err
	}

	return SQLCondition{
		Clause: fmt.Sprintf("%s %s ?", column, op),
		Params: []any{value},
	}, nil
}

func extractFieldName(e *expr.Expr) (string, error) {
	if e == nil {
		return "", fmt.Errorf("nil expression")
	}

	switch kind := e.ExprKind.(type) {
	case *expr.Expr_IdentExpr:
		return kind.IdentExpr.Name, nil
	default:
		return "", fmt.Errorf("expected identifier, got %T", kind)
	}
}

func extractValue(e *expr.Expr) (any, error) {
	if e == nil {
		return nil, fmt.Errorf("nil expression")
	}

	switch kind := e.ExprKind.(type) {
	case *expr.Expr_ConstExpr:
		return extractConstValue(kind.ConstExpr)
	case *expr.Expr_CallExpr:
		// Handle timestamp("...") function calls.
		if kind.CallExpr.Function == "timestamp" && len(kind.CallExpr.Args) == 1 {
			return extractTimestampValue(kind.CallExpr.Args[0])
		}
		return nil, fmt.Errorf("unsupported function in value position: %s", kind.CallExpr.Function)
	default:
		return nil, fmt.Errorf("expected constant or timestamp, got %T", kind)
	}
}

func extractConstValue(c *expr.Constant) (any, error) {
	if c == nil {
		return nil, fmt.Errorf("nil constant")
	}

	switch kind := c.ConstantKind.(type) {
	case *expr.Constant_StringValue:
		return kind.StringValue, nil
	case *expr.Constant_Int64Value:
		return kind.Int64Value, nil
	case *expr.Constant_Uint64Value:
		return kind.Uint64Value, nil
	case *expr.Constant_DoubleValue:
		return kind.DoubleValue, nil
	case *expr.Constant_BoolValue:
		return kind.BoolValue, nil
	default:
		return nil, fmt.Errorf("unsupported constant type: %T", kind)
	}
}

// extractTimestampValue converts timestamp literals to Unix milliseconds to
// match the persisted column encoding.
func extractTimestampValue(e *expr.Expr) (int64, error) {
	if e == nil {
		return 0, fmt.Errorf("nil timestamp argument")
	}

	switch kind := e.ExprKind.(type) {
	case *expr.Expr_ConstExpr:
		strVal, ok := kind.ConstExpr.ConstantKind.(*expr.Constant_StringValue)
		if !ok {
			return 0, fmt.Errorf("timestamp argument must be a string")
		}
		t, err := time.Parse(time.RFC3339, strVal.StringValue)
		if err != nil {
			t, err = time.Parse(time.RFC3339Nano, strVal.StringValue)
			if err != nil {
				return 0, fmt.Errorf("invalid timestamp format: %s", strVal.StringValue)
			}
		}
		return t.UTC().UnixMilli(), nil
	default:
		return 0, fmt.Errorf("timestamp argument must be a constant string")
	}
}
