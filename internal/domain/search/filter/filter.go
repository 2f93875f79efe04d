package filter

import "fmt"

// Range holds numeric range bounds. Nil bounds are open.
type Range struct {
	GT  *float64
	GTE *float64
	LT  *float64
	LTE *float64
}

// NewRange validates range bounds: at least one bound, no conflicting
// duplicates on the same side.
func NewRange(gt, gte, lt, lte *float64) (Range, error) {
	if gt == nil && gte == nil && lt == nil && lte == nil {
		return Range{}, fmt.Errorf("at least one range bound is required")
	}
	if gt != nil && gte != nil {
		return Range{}, fmt.Errorf("gt and gte are mutually exclusive")
	}
	if lt != nil && lte != nil {
		return Range{}, fmt.Errorf("lt and lte are mutually exclusive")
	}
	return Range{GT: gt, GTE: gte, LT: lt, LTE: lte}, nil
}

// Condition is one filter clause: an exact term match or a numeric range.
type Condition struct {
	field   string
	term    string
	rng     *Range
	isRange bool
}

// NewTerm creates an exact-match condition.
func NewTerm(field, value string) (Condition, error) {
	if field == "" {
		return Condition{}, fmt.Errorf("filter field is required")
	}
	if value == "" {
		return Condition{}, fmt.Errorf("filter value for %q is required", field)
	}
	return Condition{field: field, term: value}, nil
}

// NewRangeCondition creates a numeric range condition.
func NewRangeCondition(field string, r Range) (Condition, error) {
	if field == "" {
		return Condition{}, fmt.Errorf("filter field is required")
	}
	return Condition{field: field, rng: &r, isRange: true}, nil
}

// Field returns the filtered field name.
func (c Condition) Field() string { return c.field }

// Term returns the exact-match value ("" for range conditions).
func (c Condition) Term() string { return c.term }

// Range returns the range bounds (nil for term conditions).
func (c Condition) Range() *Range { return c.rng }

// IsRange reports whether the condition is a range clause.
func (c Condition) IsRange() bool { return c.isRange }

// Expression combines conditions into must / should / must_not groups,
// mirroring the engine's bool query.
type Expression struct {
	must    []Condition
	should  []Condition
	mustNot []Condition
}

// MaxConditions caps the total number of clauses per expression.
const MaxConditions = 64

// NewExpression validates and creates an Expression. Empty groups are fine;
// an entirely empty expression matches everything.
func NewExpression(must, should, mustNot []Condition) (Expression, error) {
	if len(must)+len(should)+len(mustNot) > MaxConditions {
		return Expression{}, fmt.Errorf("too many filter conditions (max %d)", MaxConditions)
	}
	return Expression{must: must, should: should, mustNot: mustNot}, nil
}

// Must returns the required conditions.
func (e Expression) Must() []Condition { return e.must }

// Should returns the optional (scoring) conditions.
func (e Expression) Should() []Condition { return e.should }

// MustNot returns the excluding conditions.
func (e Expression) MustNot() []Condition { return e.mustNot }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool {
	return len(e.must) == 0 && len(e.should) == 0 && len(e.mustNot) == 0
}
