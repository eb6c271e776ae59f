package validation

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"
)

// formatCheck applies a per-field format test to every field of the rule.
//
// The first blank value ends evaluation and discards every failure found so
// far, so a partially filled group is reported as clean.
type formatCheck struct {
	name  StrategyName
	check func(ctx *Context, v Value) (string, error)
}

func (f formatCheck) Name() string { return string(f.name) }

func (f formatCheck) Evaluate(ctx *Context) ([]Failure, error) {
	var failures []Failure
	for _, name := range ctx.FieldNames {
		value := ctx.Value(name)
		if value.IsEmpty() {
			return nil, nil
		}
		msg, err := f.check(ctx, value)
		if err != nil {
			return nil, err
		}
		if msg != "" {
			failures = append(failures, Failure{Page: ctx.PageOf(name), Field: name, Message: msg})
		}
	}
	return failures, nil
}

func checkEmail(_ *Context, v Value) (string, error) {
	if IsEmail(v.String()) {
		return "", nil
	}
	return "Invalid email address: " + v.String(), nil
}

func checkPhone(_ *Context, v Value) (string, error) {
	if IsPhoneNumber(v.String()) {
		return "", nil
	}
	return "Invalid phone number: " + v.String(), nil
}

func checkEircode(_ *Context, v Value) (string, error) {
	if IsEircode(v.Trimmed()) {
		return "", nil
	}
	return "Invalid eircode: " + v.String(), nil
}

func checkNIPostcode(_ *Context, v Value) (string, error) {
	if IsNIPostcode(v.Trimmed()) {
		return "", nil
	}
	return "Invalid NI postcode: " + v.String(), nil
}

func checkNumCharacters(ctx *Context, v Value) (string, error) {
	permitted, err := ctx.Params.IntList("num_characters", []int{1})
	if err != nil {
		return "", err
	}
	length := utf8.RuneCountInString(v.String())
	if slices.Contains(permitted, length) {
		return "", nil
	}

	lengths := make([]string, len(permitted))
	for i, n := range permitted {
		lengths[i] = strconv.Itoa(n)
	}
	return fmt.Sprintf("The length of %s is %d. Permitted lengths are: [%s].",
		v.String(), length, strings.Join(lengths, ", ")), nil
}
