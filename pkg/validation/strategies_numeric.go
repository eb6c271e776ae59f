package validation

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// numbersNearlyEqual flags both fields of a pair when the second value is
// not within params.tolerance (a fraction, default 0.01) of the first.
// Values that do not parse as numbers make the rule a no-op.
type numbersNearlyEqual struct{}

func (numbersNearlyEqual) Name() string { return string(StrategyNumbersNearlyEqual) }

func (numbersNearlyEqual) Evaluate(ctx *Context) ([]Failure, error) {
	if len(ctx.FieldNames) != 2 {
		return nil, nil
	}
	tolerance, err := ctx.Params.Float("tolerance", 0.01)
	if err != nil {
		return nil, err
	}

	field1, field2 := ctx.FieldNames[0], ctx.FieldNames[1]
	v1, ok1 := parseNumber(ctx.Value(field1).String())
	v2, ok2 := parseNumber(ctx.Value(field2).String())
	if !ok1 || !ok2 {
		return nil, nil
	}

	lower, upper := v1*(1-tolerance), v1*(1+tolerance)
	if v2 >= lower && v2 <= upper {
		return nil, nil
	}

	page1, page2 := ctx.PageOf(field1), ctx.PageOf(field2)
	pct := formatNumber(tolerance * 100)
	s1, s2 := formatNumber(v1), formatNumber(v2)
	name1, name2 := strings.ToUpper(field1), strings.ToUpper(field2)

	msg1 := fmt.Sprintf("This number (%s) is not within %s%% of '%s's value (%s).", s1, pct, name2, s2)
	msg2 := fmt.Sprintf("This number (%s) is not within %s%% of '%s's value (%s).", s2, pct, name1, s1)
	if page1 != page2 {
		msg1 += fmt.Sprintf(" On page %d, '%s's value is %s.", page2, name2, s2)
		msg2 += fmt.Sprintf(" On page %d, '%s's value is %s.", page1, name1, s1)
	}

	return []Failure{
		{Page: page1, Field: field1, Message: msg1},
		{Page: page2, Field: field2, Message: msg2},
	}, nil
}

// sumShouldEqualTotal checks that FieldNames[1:] add up to FieldNames[0].
type sumShouldEqualTotal struct{}

func (sumShouldEqualTotal) Name() string { return string(StrategySumShouldEqualTotal) }

func (sumShouldEqualTotal) Evaluate(ctx *Context) ([]Failure, error) {
	if len(ctx.FieldNames) == 0 {
		return nil, nil
	}

	totalField := ctx.FieldNames[0]
	totalValue := ctx.Value(totalField)
	if totalValue.IsEmpty() {
		return nil, nil
	}

	total, ok := parseNumber(digitsOnly(strings.ReplaceAll(totalValue.String(), ",", "")))
	if !ok {
		return []Failure{{
			Page:    ctx.PageOf(totalField),
			Field:   totalField,
			Message: fmt.Sprintf("Total value '%s' is not a valid number.", totalValue.String()),
		}}, nil
	}

	var failures []Failure
	sum := 0.0
	for _, name := range ctx.FieldNames[1:] {
		value := ctx.Value(name)
		if value.IsEmpty() {
			continue
		}
		n, ok := parseNumber(strings.ReplaceAll(value.String(), ",", ""))
		if !ok {
			failures = append(failures, Failure{
				Page:    ctx.PageOf(name),
				Field:   name,
				Message: fmt.Sprintf("Value '%s' is not a valid number.", value.String()),
			})
			continue
		}
		sum += n
	}

	if !sameAmount(sum, total) {
		failures = append(failures, Failure{
			Page:    ctx.PageOf(totalField),
			Field:   totalField,
			Message: fmt.Sprintf("The sum of the fields is %s, but the total is %s.", formatNumber(sum), formatNumber(total)),
		})
	}
	return failures, nil
}

// parseNumber parses a trimmed decimal number.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// digitsOnly keeps ASCII digits and decimal points, so currency symbols and
// stray letters around a total are ignored.
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// sameAmount compares two sums allowing for binary floating point error,
// so 0.1 + 0.2 equals a total of 0.3.
func sameAmount(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Abs(b))
}
