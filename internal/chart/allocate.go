// Package chart holds the pure chart-of-accounts algorithms: code allocation,
// hierarchy walks and chart validation. Every function takes a full account
// snapshot and never mutates it.
package chart

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/ledgerdesk/coa/internal/model"
)

// TopLevelStep is the gap left between consecutive top-level codes of a type.
const TopLevelStep = 100

// ErrInvalidType matches any *InvalidTypeError via errors.Is.
var ErrInvalidType = errors.New("invalid account type")

// InvalidTypeError reports an account type outside the base-code table.
type InvalidTypeError struct {
	Type model.AccountType
}

func (e *InvalidTypeError) Error() string {
	return fmt.Sprintf("invalid account type %q: must be one of ASSET, LIABILITY, EQUITY, REVENUE, EXPENSE", string(e.Type))
}

// Is lets errors.Is(err, ErrInvalidType) match.
func (e *InvalidTypeError) Is(target error) bool {
	return target == ErrInvalidType
}

var baseCodes = map[model.AccountType]int64{
	model.AccountTypeAsset:     1000,
	model.AccountTypeLiability: 2000,
	model.AccountTypeEquity:    3000,
	model.AccountTypeRevenue:   4000,
	model.AccountTypeExpense:   5000,
}

// BaseCode returns the reserved starting code for an account type.
func BaseCode(t model.AccountType) (int64, error) {
	base, ok := baseCodes[t]
	if !ok {
		return 0, &InvalidTypeError{Type: t}
	}
	return base, nil
}

// Allocate proposes the next code for a new account of accountType under
// parentID ("" for top level). A parentID that matches no account falls back
// to top-level allocation. The result is advisory; callers may override it.
func Allocate(accounts []model.Account, accountType model.AccountType, parentID string) (string, error) {
	base, err := BaseCode(accountType)
	if err != nil {
		return "", err
	}

	if parentID != "" {
		if parent, ok := findByID(accounts, parentID); ok {
			return childCode(accounts, parent), nil
		}
	}
	return topLevelCode(accounts, accountType, base), nil
}

func childCode(accounts []model.Account, parent model.Account) string {
	var codes []int64
	for _, a := range accounts {
		if a.ParentID != parent.ID {
			continue
		}
		if v, ok := parseCode(a.Code, 1); ok {
			codes = append(codes, v)
		}
	}
	if len(codes) == 0 {
		return parent.Code + "1"
	}
	return strconv.FormatInt(maxOf(codes)+1, 10)
}

func topLevelCode(accounts []model.Account, accountType model.AccountType, base int64) string {
	var codes []int64
	for _, a := range accounts {
		if a.Type != accountType || !a.IsRoot() {
			continue
		}
		if v, ok := parseCode(a.Code, TopLevelStep); ok {
			codes = append(codes, v)
		}
	}
	if len(codes) == 0 {
		return strconv.FormatInt(base, 10)
	}
	if m := maxOf(codes); m >= base {
		return strconv.FormatInt(m+TopLevelStep, 10)
	}
	return strconv.FormatInt(base, 10)
}

// parseCode reads a code made only of ASCII digits. Codes that overflow
// int64, or that would overflow once step is added, do not parse.
func parseCode(code string, step int64) (int64, bool) {
	if code == "" {
		return 0, false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return 0, false
		}
	}
	v, err := strconv.ParseInt(code, 10, 64)
	if err != nil {
		return 0, false
	}
	if v > math.MaxInt64-step {
		return 0, false
	}
	return v, true
}

func maxOf(values []int64) int64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func findByID(accounts []model.Account, id string) (model.Account, bool) {
	for _, a := range accounts {
		if a.ID == id {
			return a, true
		}
	}
	return model.Account{}, false
}
