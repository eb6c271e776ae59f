package validation

import "sort"

// Strategy evaluates one rule against a Context.
//
// Implementations must be pure: the same Context always produces the same
// failures, and the Context is never modified. A returned error drops the
// rule's output for the current row.
type Strategy interface {
	// Name returns the registry key of the strategy.
	Name() string

	// Evaluate returns the failures found, in the order they were found.
	Evaluate(ctx *Context) ([]Failure, error)
}

// StrategyName is the registry key referenced by a rule's "strategy" field.
type StrategyName string

const (
	StrategyMaxTickboxes        StrategyName = "max_tickboxes"
	StrategyMutuallyExclusive   StrategyName = "mutually_exclusive"
	StrategyValueExistsInLookup StrategyName = "value_exists_in_lookup"
	StrategyMatchValueInLookup  StrategyName = "match_value_in_lookup"
	StrategyNumbersNearlyEqual  StrategyName = "numbers_nearly_equal"
	StrategySumShouldEqualTotal StrategyName = "sum_should_equal_total"
	StrategyEmailAddressesValid StrategyName = "email_addresses_valid"
	StrategyPhoneNumbersValid   StrategyName = "phone_numbers_valid"
	StrategyEircodeValid        StrategyName = "eircode_valid"
	StrategyNIPostcodeValid     StrategyName = "ni_postcode_valid"
	StrategyNumCharactersValid  StrategyName = "num_characters_valid"
)

// Registry maps strategy names to implementations.
type Registry map[StrategyName]Strategy

// DefaultRegistry returns the built-in strategies.
func DefaultRegistry() Registry {
	return Registry{
		StrategyMaxTickboxes:        maxTickboxes{},
		StrategyMutuallyExclusive:   mutuallyExclusive{},
		StrategyValueExistsInLookup: valueExistsInLookup{},
		StrategyMatchValueInLookup:  matchValueInLookup{},
		StrategyNumbersNearlyEqual:  numbersNearlyEqual{},
		StrategySumShouldEqualTotal: sumShouldEqualTotal{},
		StrategyEmailAddressesValid: formatCheck{name: StrategyEmailAddressesValid, check: checkEmail},
		StrategyPhoneNumbersValid:   formatCheck{name: StrategyPhoneNumbersValid, check: checkPhone},
		StrategyEircodeValid:        formatCheck{name: StrategyEircodeValid, check: checkEircode},
		StrategyNIPostcodeValid:     formatCheck{name: StrategyNIPostcodeValid, check: checkNIPostcode},
		StrategyNumCharactersValid:  formatCheck{name: StrategyNumCharactersValid, check: checkNumCharacters},
	}
}

// Get returns the strategy registered under name.
func (r Registry) Get(name string) (Strategy, bool) {
	s, ok := r[StrategyName(name)]
	return s, ok
}

// Names returns the registered strategy names in sorted order.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, string(name))
	}
	sort.Strings(names)
	return names
}
