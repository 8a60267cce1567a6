// Package reason converts protovalidate rule ids into reason codes: the
// UPPER_SNAKE_CASE identifiers carried in google.rpc.BadRequest field
// violations and matched on by API consumers.
package reason

import "strings"

// MaxLength is the conventional upper bound for a reason code, matching the
// limit documented for google.rpc.ErrorInfo.reason.
const MaxLength = 63

// ToReasonCode converts a rule id to its reason code, eg. "string.min_len"
// becomes "STRING_MIN_LEN" and "password_mismatch" becomes "PASSWORD_MISMATCH".
//
// An empty rule id yields an empty reason code.
func ToReasonCode(ruleID string) string {
	if ruleID == "" {
		return ""
	}
	return strings.ToUpper(strings.ReplaceAll(ruleID, ".", "_"))
}

// IsValid reports whether s matches [A-Z][A-Z0-9_]*[A-Z0-9].
func IsValid(s string) bool {
	if len(s) < 2 {
		return false
	}

	if !isUpper(s[0]) {
		return false
	}

	last := s[len(s)-1]
	if !isUpper(last) && !isDigit(last) {
		return false
	}

	for i := 1; i < len(s)-1; i++ {
		c := s[i]
		if !isUpper(c) && !isDigit(c) && c != '_' {
			return false
		}
	}
	return true
}

// Conforms is IsValid plus the MaxLength bound.
func Conforms(s string) bool {
	return len(s) <= MaxLength && IsValid(s)
}

func isUpper(c byte) bool {
	return c >= 'A' && c <= 'Z'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
