package validation

import "fmt"

// maxTickboxes limits how many fields of a group may be ticked. When the
// limit is exceeded the last ticked field in declared order is flagged.
type maxTickboxes struct{}

func (maxTickboxes) Name() string { return string(StrategyMaxTickboxes) }

func (maxTickboxes) Evaluate(ctx *Context) ([]Failure, error) {
	limit, err := ctx.Params.Int("max", 1)
	if err != nil {
		return nil, err
	}

	var ticked []string
	for _, name := range ctx.FieldNames {
		if ctx.Value(name).IsTicked() {
			ticked = append(ticked, name)
		}
	}
	if len(ticked) <= limit {
		return nil, nil
	}

	last := ticked[len(ticked)-1]
	return []Failure{{
		Page:    ctx.PageOf(last),
		Field:   last,
		Message: fmt.Sprintf("At most %d of these may be ticked; %d are ticked.", limit, len(ticked)),
	}}, nil
}

// mutuallyExclusive flags params.exclusive_field when it is ticked together
// with any other field of the group.
type mutuallyExclusive struct{}

func (mutuallyExclusive) Name() string { return string(StrategyMutuallyExclusive) }

func (mutuallyExclusive) Evaluate(ctx *Context) ([]Failure, error) {
	exclusive, err := ctx.Params.String("exclusive_field", "")
	if err != nil {
		return nil, err
	}
	if exclusive == "" || !ctx.Value(exclusive).IsTicked() {
		return nil, nil
	}

	for _, name := range ctx.FieldNames {
		if name == exclusive {
			continue
		}
		if ctx.Value(name).IsTicked() {
			return []Failure{{
				Page:    ctx.PageOf(exclusive),
				Field:   exclusive,
				Message: "This option is mutually exclusive with the others; do not tick both.",
			}}, nil
		}
	}
	return nil, nil
}
