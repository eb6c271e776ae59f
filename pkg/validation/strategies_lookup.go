package validation

import "fmt"

// valueExistsInLookup flags FieldNames[0] when its value is not a key of the
// lookup list.
type valueExistsInLookup struct{}

func (valueExistsInLookup) Name() string { return string(StrategyValueExistsInLookup) }

func (valueExistsInLookup) Evaluate(ctx *Context) ([]Failure, error) {
	if ctx.Lookup == nil || len(ctx.FieldNames) == 0 {
		return nil, nil
	}
	column, err := ctx.Params.Int("lookup_column", 0)
	if err != nil {
		return nil, err
	}

	field := ctx.FieldNames[0]
	value := ctx.Value(field)
	if value.IsEmpty() {
		return nil, nil
	}

	_, found, err := ctx.Lookup.LookupValue(value.String(), column)
	if err != nil {
		return nil, err
	}
	if found {
		return nil, nil
	}
	return []Failure{{
		Page:    ctx.PageOf(field),
		Field:   field,
		Message: fmt.Sprintf("Value '%s' not found in lookup list.", value.String()),
	}}, nil
}

// matchValueInLookup looks up FieldNames[0] and compares the looked-up cell
// with the indexed value of FieldNames[1]. A mismatch flags FieldNames[1].
type matchValueInLookup struct{}

func (matchValueInLookup) Name() string { return string(StrategyMatchValueInLookup) }

func (matchValueInLookup) Evaluate(ctx *Context) ([]Failure, error) {
	if ctx.Lookup == nil || len(ctx.FieldNames) < 2 {
		return nil, nil
	}
	column, err := ctx.Params.Int("lookup_column", 0)
	if err != nil {
		return nil, err
	}

	keyField, compareField := ctx.FieldNames[0], ctx.FieldNames[1]
	key := ctx.Value(keyField)
	if key.IsEmpty() || ctx.Value(compareField).IsEmpty() {
		return nil, nil
	}

	msg, mismatch, err := ctx.Lookup.MatchValue(key.String(), column, compareField)
	if err != nil {
		return nil, err
	}
	if !mismatch {
		return nil, nil
	}
	return []Failure{{
		Page:    ctx.PageOf(compareField),
		Field:   compareField,
		Message: msg,
	}}, nil
}
