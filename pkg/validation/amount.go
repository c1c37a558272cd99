package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxFractionDigits is the most fractional digits accepted from user input.
const MaxFractionDigits = 8

// amountPattern accepts plain decimal numbers only: an integer part with no
// superfluous leading zero, optionally followed by a fractional part. A bare
// fractional part (".5") is also accepted. Signs, exponents and grouping
// characters never match.
var amountPattern = regexp.MustCompile(`^(?:(?:0|[1-9][0-9]*)(?:\.[0-9]+)?|\.[0-9]+)$`)

// AmountRules carries the configured bounds for one form's amount field.
// Min and Max are inclusive; a zero-valued Max means "no upper bound".
type AmountRules struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

// Result is the outcome of a validation check: either valid, or a
// human-readable reason for display next to the field.
type Result struct {
	Valid  bool
	Reason string
}

func ok() Result {
	return Result{Valid: true}
}

func invalid(reason string) Result {
	return Result{Valid: false, Reason: reason}
}

// CheckFormat validates the grammar of a raw amount string without applying
// any bounds. An empty string is "not yet entered" and passes.
func CheckFormat(raw string) Result {
	if raw == "" {
		return ok()
	}
	if strings.ContainsAny(raw, "eE+-") {
		return invalid("amount must be a plain decimal number")
	}
	if !amountPattern.MatchString(raw) {
		return invalid("amount must be a plain decimal number")
	}
	if idx := strings.IndexByte(raw, '.'); idx >= 0 && len(raw)-idx-1 > MaxFractionDigits {
		return invalid(fmt.Sprintf("amount supports at most %d decimal places", MaxFractionDigits))
	}
	return ok()
}

// Check validates a raw amount string against the rules' bounds. Format is
// checked first; a format failure short-circuits the bounds checks.
func (r AmountRules) Check(raw string) Result {
	if res := CheckFormat(raw); !res.Valid {
		return res
	}
	if raw == "" {
		return ok()
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return invalid("amount must be a plain decimal number")
	}
	if !r.Min.IsZero() && amount.LessThan(r.Min) {
		return invalid(fmt.Sprintf("amount is below the minimum of %s", r.Min))
	}
	if !r.Max.IsZero() && amount.GreaterThan(r.Max) {
		return invalid(fmt.Sprintf("amount exceeds the maximum of %s", r.Max))
	}
	return ok()
}

// CheckBalance verifies the amount against the available balance. This is a
// separate check from format and bounds: balance is a live wallet-read value,
// not a configured rule.
func CheckBalance(amount, available decimal.Decimal) Result {
	if amount.GreaterThan(available) {
		return invalid(fmt.Sprintf("amount exceeds available balance of %s", available))
	}
	return ok()
}

// Normalize parses a format-checked amount string into its canonical decimal
// value. Callers must run CheckFormat first; a failure here means they did not.
func Normalize(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, fmt.Errorf("cannot normalize an empty amount")
	}
	if res := CheckFormat(raw); !res.Valid {
		return decimal.Zero, fmt.Errorf("cannot normalize amount %q: %s", raw, res.Reason)
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse amount %q: %w", raw, err)
	}
	return amount, nil
}
