package validate

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/FACorreiaa/go-account-api/internal/types"
)

// Check is a single predicate on a field value plus the message reported
// when the predicate fails.
type Check struct {
	Fn      func(value string) bool
	Message string
}

// Rule is the declarative validation entry for one field. Optional fields
// are skipped when absent; required fields run their checks against the
// empty string when absent.
type Rule struct {
	Field    string
	Optional bool
	Checks   []Check
}

// RuleSet is the ordered list of rules for one endpoint.
type RuleSet []Rule

// Apply evaluates the rule set against the supplied field values. A nil
// pointer means the field was absent from the request. Values are trimmed
// in place before any check runs, so downstream code sees the sanitized
// value. Evaluation short-circuits per field on the first failing check
// but accumulates failures across fields.
func (rs RuleSet) Apply(values map[string]*string) []types.FieldError {
	var fieldErrors []types.FieldError

	for _, rule := range rs {
		ptr := values[rule.Field]
		if ptr == nil {
			if rule.Optional {
				continue
			}
			empty := ""
			ptr = &empty
		}

		*ptr = strings.TrimSpace(*ptr)

		for _, check := range rule.Checks {
			if !check.Fn(*ptr) {
				fieldErrors = append(fieldErrors, types.FieldError{
					Field:   rule.Field,
					Message: check.Message,
				})
				break
			}
		}
	}

	return fieldErrors
}

func NotEmpty(value string) bool {
	return value != ""
}

// MinLen returns a predicate checking the minimum rune count.
func MinLen(n int) func(string) bool {
	return func(value string) bool {
		return utf8.RuneCountInString(value) >= n
	}
}

// IsEmail accepts plain addr-spec addresses only, no display names.
func IsEmail(value string) bool {
	if value == "" || strings.ContainsAny(value, " \t") {
		return false
	}
	addr, err := mail.ParseAddress(value)
	if err != nil {
		return false
	}
	return addr.Address == value
}
