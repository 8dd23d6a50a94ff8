package crud

import (
	"fmt"
	"strings"
)

// ErrorStrategy decides what a failed permission check turns into.
type ErrorStrategy string

const (
	// StrategyThrow surfaces the failure as an error.
	StrategyThrow ErrorStrategy = "throw"
	// StrategyReturnNull converts the failure into an empty result.
	StrategyReturnNull ErrorStrategy = "return-null"
	// StrategyIgnore proceeds as if the check passed. Trusted internal callers only.
	StrategyIgnore ErrorStrategy = "ignore"
)

// ParseErrorStrategy accepts "throw", "return-null" (or "null") and "ignore".
// An empty string means throw.
func ParseErrorStrategy(s string) (ErrorStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(StrategyThrow):
		return StrategyThrow, nil
	case string(StrategyReturnNull), "null":
		return StrategyReturnNull, nil
	case string(StrategyIgnore):
		return StrategyIgnore, nil
	}
	return "", fmt.Errorf("unknown error strategy %q", s)
}

type outcome int

const (
	proceed outcome = iota
	empty
	fail
)

func (s ErrorStrategy) resolve(denied *UnauthorizedError, obscure bool) (outcome, error) {
	switch s {
	case StrategyReturnNull:
		return empty, nil
	case StrategyIgnore:
		return proceed, nil
	}
	if obscure {
		return fail, ErrObscured
	}
	return fail, denied
}
