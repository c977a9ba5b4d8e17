package core

import (
	"strconv"
	"strings"

	pep440 "github.com/aquasecurity/go-pep440-version"

	"hub-versions/internal/types"
)

// lowerBoundOps are the operators that impose a lower bound on the
// engine version. An exclusive ">" bound reports the bound version
// itself rather than bumping to the next release.
var lowerBoundOps = map[types.ConstraintOp]struct{}{
	types.ConstraintOpGte:    {},
	types.ConstraintOpGt:     {},
	types.ConstraintOpEq:     {},
	types.ConstraintOpEq2:    {},
	types.ConstraintOpCompat: {},
}

// NormalizeMinimal reduces a raw requires_ansible string to the single
// lowest engine version any satisfying value must reach. With several
// lower-bound clauses the numerically greatest one is binding. A blank
// or upper-bound-only string yields RowStatusMissing; malformed input
// yields RowStatusParseError. Pure; the caller keeps the raw string for
// diagnostics.
func NormalizeMinimal(raw string) (*types.MinimalVersion, types.RowStatus) {
	clauses, err := ParseClauses(raw)
	if err != nil {
		return nil, types.RowStatusParseError
	}
	var binding *pep440.Version
	var bindingRaw string
	for _, clause := range clauses {
		if _, ok := lowerBoundOps[clause.Op]; !ok {
			// Upper bounds and exclusions are validated but never bind.
			if _, err := pep440.Parse(clause.Version); err != nil {
				return nil, types.RowStatusParseError
			}
			continue
		}
		parsed, err := pep440.Parse(clause.Version)
		if err != nil {
			return nil, types.RowStatusParseError
		}
		if binding == nil || parsed.Compare(*binding) > 0 {
			binding = &parsed
			bindingRaw = clause.Version
		}
	}
	if binding == nil {
		return nil, types.RowStatusMissing
	}
	minimal, ok := splitRelease(bindingRaw)
	if !ok {
		return nil, types.RowStatusParseError
	}
	return minimal, types.RowStatusOK
}

// splitRelease extracts the numeric (major, minor, patch) tuple from a
// dotted version string. Trailing non-numeric characters in a segment
// (e.g. "9rc1") are ignored past the digit prefix.
func splitRelease(version string) (*types.MinimalVersion, bool) {
	segments := strings.Split(strings.TrimSpace(version), ".")
	numbers := make([]int, 0, 3)
	for _, segment := range segments {
		digits := digitPrefix(segment)
		if digits == "" {
			break
		}
		value, err := strconv.Atoi(digits)
		if err != nil {
			return nil, false
		}
		numbers = append(numbers, value)
		if len(numbers) == 3 {
			break
		}
	}
	if len(numbers) == 0 {
		return nil, false
	}
	minimal := &types.MinimalVersion{Major: numbers[0]}
	if len(numbers) > 1 {
		minimal.Minor = numbers[1]
	}
	if len(numbers) > 2 {
		minimal.Patch = numbers[2]
		minimal.HasPatch = true
	}
	return minimal, true
}

func digitPrefix(segment string) string {
	end := 0
	for end < len(segment) && segment[end] >= '0' && segment[end] <= '9' {
		end++
	}
	return segment[:end]
}
