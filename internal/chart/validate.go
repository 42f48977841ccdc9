package chart

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ledgerdesk/coa/internal/model"
)

// Validation rules checked by Validate.
const (
	RuleInvalidType   = 1
	RuleDuplicateCode = 2
	RuleUnknownParent = 3
	RuleCycle         = 4
	RuleChildPrefix   = 5
	RuleLeadingDigit  = 6
)

// ValidationError describes a single rule violation.
type ValidationError struct {
	Rule        int
	AccountID   string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("rule %d [%s]: %s", e.Rule, e.AccountID, e.Description)
}

// Advisory reports whether the rule describes a convention rather than a
// structural problem.
func (e ValidationError) Advisory() bool {
	return e.Rule == RuleChildPrefix || e.Rule == RuleLeadingDigit
}

// Validate checks a chart snapshot against the structural rules and the
// numbering conventions. Findings are returned in input order per rule.
func Validate(accounts []model.Account) []ValidationError {
	var errs []ValidationError

	byID := make(map[string]model.Account, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}

	// Rule 1: account type is in the enumeration.
	for _, a := range accounts {
		if !a.Type.Valid() {
			errs = append(errs, ValidationError{
				Rule:        RuleInvalidType,
				AccountID:   a.ID,
				Description: fmt.Sprintf("invalid account type %q", string(a.Type)),
			})
		}
	}

	// Rule 2: active codes are unique.
	firstByCode := make(map[string]string)
	for _, a := range accounts {
		if !a.IsActive {
			continue
		}
		if prev, ok := firstByCode[a.Code]; ok {
			errs = append(errs, ValidationError{
				Rule:        RuleDuplicateCode,
				AccountID:   a.ID,
				Description: fmt.Sprintf("code %s already used by account %s", a.Code, prev),
			})
			continue
		}
		firstByCode[a.Code] = a.ID
	}

	// Rule 3: parent references resolve.
	for _, a := range accounts {
		if a.IsRoot() {
			continue
		}
		if _, ok := byID[a.ParentID]; !ok {
			errs = append(errs, ValidationError{
				Rule:        RuleUnknownParent,
				AccountID:   a.ID,
				Description: fmt.Sprintf("parent %s not found", a.ParentID),
			})
		}
	}

	// Rule 4: parent chains terminate.
	for _, a := range accounts {
		if onCycle(a, byID) {
			errs = append(errs, ValidationError{
				Rule:        RuleCycle,
				AccountID:   a.ID,
				Description: "account is its own ancestor",
			})
		}
	}

	// Rule 5: child codes extend the parent code.
	for _, a := range accounts {
		parent, ok := byID[a.ParentID]
		if a.IsRoot() || !ok {
			continue
		}
		if !strings.HasPrefix(a.Code, parent.Code) || a.Code == parent.Code {
			errs = append(errs, ValidationError{
				Rule:        RuleChildPrefix,
				AccountID:   a.ID,
				Description: fmt.Sprintf("code %s does not extend parent code %s", a.Code, parent.Code),
			})
		}
	}

	// Rule 6: numeric top-level codes start with the type's leading digit.
	for _, a := range accounts {
		if !a.IsRoot() {
			continue
		}
		base, err := BaseCode(a.Type)
		if err != nil {
			continue
		}
		if _, ok := parseCode(a.Code, 0); !ok {
			continue
		}
		want := strconv.FormatInt(base, 10)[:1]
		if a.Code[:1] != want {
			errs = append(errs, ValidationError{
				Rule:        RuleLeadingDigit,
				AccountID:   a.ID,
				Description: fmt.Sprintf("%s code %s should start with %s", a.Type, a.Code, want),
			})
		}
	}

	return errs
}

// onCycle reports whether following parent links from a returns to a.
func onCycle(a model.Account, byID map[string]model.Account) bool {
	seen := map[string]bool{a.ID: true}
	cur := a
	for !cur.IsRoot() {
		parent, ok := byID[cur.ParentID]
		if !ok {
			return false
		}
		if parent.ID == a.ID {
			return true
		}
		if seen[parent.ID] {
			// A cycle further up that a does not belong to.
			return false
		}
		seen[parent.ID] = true
		cur = parent
	}
	return false
}
