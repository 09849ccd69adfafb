package objapi

// FormulaResult is the evaluated result of a formula column.
// Value projects it to a native value without touching the payload.
type FormulaResult interface {
	Tagged
	Value() any
}

var formulaRegistry = func() *Registry[FormulaResult] {
	r := NewRegistry[FormulaResult]("formula result type", "type")
	r.Register(
		func() FormulaResult { return &StringFormula{} },
		func() FormulaResult { return &NumberFormula{} },
		func() FormulaResult { return &DateFormula{} },
		func() FormulaResult { return &BooleanFormula{} },
	)
	return r
}()

// DecodeFormulaResult decodes a formula result; null yields nil.
func DecodeFormulaResult(data []byte) (FormulaResult, error) {
	return formulaRegistry.DecodeOptional(data)
}

type StringFormula struct {
	String *string `json:"string"`
}

func (StringFormula) Type() string { return "string" }

func (f StringFormula) Value() any {
	if f.String == nil {
		return nil
	}
	return *f.String
}

func (f StringFormula) MarshalJSON() ([]byte, error) {
	type wire StringFormula
	return marshalTagged("type", f.Type(), wire(f))
}

type NumberFormula struct {
	Number *Numeric `json:"number"`
}

func (NumberFormula) Type() string { return "number" }

func (f NumberFormula) Value() any {
	if f.Number == nil {
		return nil
	}
	return f.Number.Value()
}

func (f NumberFormula) MarshalJSON() ([]byte, error) {
	type wire NumberFormula
	return marshalTagged("type", f.Type(), wire(f))
}

type DateFormula struct {
	Date *DateRange `json:"date"`
}

func (DateFormula) Type() string { return "date" }

func (f DateFormula) Value() any { return ProjectDate(f.Date) }

func (f DateFormula) MarshalJSON() ([]byte, error) {
	type wire DateFormula
	return marshalTagged("type", f.Type(), wire(f))
}

type BooleanFormula struct {
	Boolean *bool `json:"boolean"`
}

func (BooleanFormula) Type() string { return "boolean" }

func (f BooleanFormula) Value() any {
	if f.Boolean == nil {
		return nil
	}
	return *f.Boolean
}

func (f BooleanFormula) MarshalJSON() ([]byte, error) {
	type wire BooleanFormula
	return marshalTagged("type", f.Type(), wire(f))
}

// RollupObject is the aggregated result of a rollup column.
type RollupObject interface {
	Tagged
	Value() any
	AggregationFunction() *Function
}

// RollupBase carries the aggregation function shared by every rollup result.
type RollupBase struct {
	Function *Function `json:"function,omitempty"`
}

func (r RollupBase) AggregationFunction() *Function { return r.Function }

var rollupRegistry = NewRegistry[RollupObject]("rollup type", "type")

func init() {
	rollupRegistry.Register(
		func() RollupObject { return &RollupNumber{} },
		func() RollupObject { return &RollupDate{} },
		func() RollupObject { return &RollupArray{} },
	)
}

// DecodeRollupObject decodes a rollup result; null yields nil.
func DecodeRollupObject(data []byte) (RollupObject, error) {
	return rollupRegistry.DecodeOptional(data)
}

type RollupNumber struct {
	RollupBase
	Number *Numeric `json:"number"`
}

func (RollupNumber) Type() string { return "number" }

func (r RollupNumber) Value() any {
	if r.Number == nil {
		return nil
	}
	return r.Number.Value()
}

func (r RollupNumber) MarshalJSON() ([]byte, error) {
	type wire RollupNumber
	return marshalTagged("type", r.Type(), wire(r))
}

type RollupDate struct {
	RollupBase
	Date *DateRange `json:"date"`
}

func (RollupDate) Type() string { return "date" }

func (r RollupDate) Value() any { return ProjectDate(r.Date) }

func (r RollupDate) MarshalJSON() ([]byte, error) {
	type wire RollupDate
	return marshalTagged("type", r.Type(), wire(r))
}

// RollupArray holds the related values unaggregated. Value returns them as
// []PropertyValue; callers project each element themselves.
type RollupArray struct {
	RollupBase
	Array PropertyValueList `json:"array"`
}

func (RollupArray) Type() string { return "array" }

func (r RollupArray) Value() any { return []PropertyValue(r.Array) }

func (r *RollupArray) applyDefaults() {
	if r.Array == nil {
		r.Array = PropertyValueList{}
	}
}

func (r RollupArray) MarshalJSON() ([]byte, error) {
	r.applyDefaults()
	type wire RollupArray
	return marshalTagged("type", r.Type(), wire(r))
}
