// Package validation holds the jellydator rules shared by request DTOs and use cases.
package validation

import (
	"regexp"
	"strings"
	"unicode"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/zkgate/internal/errors"
)

// commitmentRegex accepts 0x-prefixed hex of up to 64 digits or a decimal field element.
var commitmentRegex = regexp.MustCompile(`^(0[xX][0-9a-fA-F]{1,64}|[0-9]{1,78})$`)

// WrapValidationError turns a rule failure into apperrors.ErrInvalidInput.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// Identifier validates opaque identifiers such as token identifiers and DIDs:
// printable characters only, no whitespace anywhere.
var Identifier = validation.NewStringRuleWithError(
	func(s string) bool {
		for _, r := range s {
			if unicode.IsSpace(r) || !unicode.IsPrint(r) {
				return false
			}
		}
		return true
	},
	validation.NewError("validation_identifier", "must not contain whitespace or control characters"),
)

// Commitment validates the textual form of a commitment
var Commitment = validation.NewStringRuleWithError(
	func(s string) bool {
		return commitmentRegex.MatchString(s)
	},
	validation.NewError("validation_commitment", "must be 0x-prefixed hex or a decimal value"),
)
