package core

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"hub-versions/internal/types"
)

// opTokens is the ordered list of constraint operators tried during
// parsing. Longer tokens must precede shorter ones to avoid false matches
// (e.g. ">=" before ">").
var opTokens = []types.ConstraintOp{
	types.ConstraintOpGte,
	types.ConstraintOpLte,
	types.ConstraintOpCompat,
	types.ConstraintOpNe,
	types.ConstraintOpEq2,
	types.ConstraintOpEq,
	types.ConstraintOpGt,
	types.ConstraintOpLt,
}

// ParseClauses splits a comma-separated requires_ansible string into
// operator/version clauses. Every clause must start with a recognized
// operator; a bare version or an operator without a version is malformed.
func ParseClauses(raw string) ([]types.Clause, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	parts := strings.Split(trimmed, ",")
	clauses := make([]types.Clause, 0, len(parts))
	for _, part := range parts {
		clause, err := parseClause(part)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, clause)
	}
	return clauses, nil
}

func parseClause(raw string) (types.Clause, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return types.Clause{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("empty constraint clause")
	}
	for _, op := range opTokens {
		if strings.HasPrefix(trimmed, string(op)) {
			version := strings.TrimSpace(strings.TrimPrefix(trimmed, string(op)))
			if version == "" {
				return types.Clause{}, errbuilder.New().
					WithCode(errbuilder.CodeInvalidArgument).
					WithMsg(fmt.Sprintf("constraint clause has no version: %s", trimmed))
			}
			return types.Clause{Op: op, Version: version}, nil
		}
	}
	return types.Clause{}, errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("constraint clause has no operator: %s", trimmed))
}
