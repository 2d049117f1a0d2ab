package csvimport

import (
	"fmt"
	"net/mail"
	"regexp"
	"strconv"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// FieldType represents the expected type of a column
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeInt     FieldType = "int"
	TypeDecimal FieldType = "decimal"
	TypeEmail   FieldType = "email"
)

// FieldRule defines validation rules for a column
type FieldRule struct {
	Column      string
	Required    bool
	Type        FieldType
	MaxLength   int
	MinValue    *decimal.Decimal
	MaxValue    *decimal.Decimal
	Pattern     *regexp.Regexp
	PatternDesc string
	Unique      bool
	CustomFunc  func(value string) error
}

// FieldRuleBuilder provides a fluent API for building field rules
type FieldRuleBuilder struct {
	rule FieldRule
}

// Field starts building a rule for a column
func Field(column string) *FieldRuleBuilder {
	return &FieldRuleBuilder{rule: FieldRule{Column: column, Type: TypeString}}
}

// Required marks the field as required
func (b *FieldRuleBuilder) Required() *FieldRuleBuilder {
	b.rule.Required = true
	return b
}

// Int sets the field type to integer
func (b *FieldRuleBuilder) Int() *FieldRuleBuilder {
	b.rule.Type = TypeInt
	return b
}

// Decimal sets the field type to decimal
func (b *FieldRuleBuilder) Decimal() *FieldRuleBuilder {
	b.rule.Type = TypeDecimal
	return b
}

// Email sets the field type to email
func (b *FieldRuleBuilder) Email() *FieldRuleBuilder {
	b.rule.Type = TypeEmail
	return b
}

// MaxLength sets the maximum length in characters
func (b *FieldRuleBuilder) MaxLength(n int) *FieldRuleBuilder {
	b.rule.MaxLength = n
	return b
}

// Range sets the numeric range (inclusive)
func (b *FieldRuleBuilder) Range(min, max decimal.Decimal) *FieldRuleBuilder {
	b.rule.MinValue = &min
	b.rule.MaxValue = &max
	return b
}

// Pattern sets a regex pattern with a description used in messages
func (b *FieldRuleBuilder) Pattern(pattern, description string) *FieldRuleBuilder {
	b.rule.Pattern = regexp.MustCompile(pattern)
	b.rule.PatternDesc = description
	return b
}

// Unique rejects repeated values within the file
func (b *FieldRuleBuilder) Unique() *FieldRuleBuilder {
	b.rule.Unique = true
	return b
}

// Custom adds a custom validation function
func (b *FieldRuleBuilder) Custom(fn func(value string) error) *FieldRuleBuilder {
	b.rule.CustomFunc = fn
	return b
}

// Build returns the built rule
func (b *FieldRuleBuilder) Build() FieldRule {
	return b.rule
}

// FieldValidator validates rows against rules in declaration order
type FieldValidator struct {
	rules       []FieldRule
	uniqueCheck map[string]map[string]int // column -> value -> first row number
	errors      *ErrorCollection
}

// NewFieldValidator creates a new field validator
func NewFieldValidator(rules []FieldRule, maxErrors int) *FieldValidator {
	return &FieldValidator{
		rules:       rules,
		uniqueCheck: make(map[string]map[string]int),
		errors:      NewErrorCollection(maxErrors),
	}
}

// ValidateRow validates all fields in a row and records at most one error per column
func (v *FieldValidator) ValidateRow(row *Row) bool {
	valid := true
	for _, rule := range v.rules {
		if err := v.validateField(rule, row); err != nil {
			v.errors.Add(*err)
			valid = false
		}
	}
	return valid
}

func (v *FieldValidator) validateField(rule FieldRule, row *Row) *RowError {
	value := row.Get(rule.Column)
	fail := func(code, format string, args ...any) *RowError {
		e := NewRowError(row.LineNumber, rule.Column, code, fmt.Sprintf(format, args...))
		return &e
	}

	if value == "" {
		if rule.Required {
			return fail(ErrCodeRequired, "is required")
		}
		return nil
	}

	switch rule.Type {
	case TypeInt:
		if _, err := strconv.ParseInt(value, 10, 64); err != nil {
			return fail(ErrCodeInvalidFormat, "'%s' is not a whole number", value)
		}
	case TypeDecimal:
		if _, err := decimal.NewFromString(value); err != nil {
			return fail(ErrCodeInvalidFormat, "'%s' is not a number", value)
		}
	case TypeEmail:
		if _, err := mail.ParseAddress(value); err != nil {
			return fail(ErrCodeInvalidFormat, "'%s' is not a valid email", value)
		}
	}

	if rule.MaxLength > 0 && utf8.RuneCountInString(value) > rule.MaxLength {
		return fail(ErrCodeInvalidLength, "must be at most %d characters", rule.MaxLength)
	}

	if (rule.Type == TypeInt || rule.Type == TypeDecimal) && (rule.MinValue != nil || rule.MaxValue != nil) {
		d, _ := decimal.NewFromString(value)
		if (rule.MinValue != nil && d.LessThan(*rule.MinValue)) || (rule.MaxValue != nil && d.GreaterThan(*rule.MaxValue)) {
			return fail(ErrCodeInvalidRange, "must be between %s and %s", rule.MinValue, rule.MaxValue)
		}
	}

	if rule.Pattern != nil && !rule.Pattern.MatchString(value) {
		return fail(ErrCodeInvalidFormat, "must be %s", rule.PatternDesc)
	}

	if rule.Unique {
		seen := v.uniqueCheck[rule.Column]
		if seen == nil {
			seen = make(map[string]int)
			v.uniqueCheck[rule.Column] = seen
		}
		if first, ok := seen[value]; ok {
			return fail(ErrCodeDuplicate, "'%s' repeated (first seen in row %d)", value, first)
		}
		seen[value] = row.LineNumber
	}

	if rule.CustomFunc != nil {
		if err := rule.CustomFunc(value); err != nil {
			return fail(ErrCodeValidation, "%s", err.Error())
		}
	}
	return nil
}

// Errors returns the error collection
func (v *FieldValidator) Errors() *ErrorCollection {
	return v.errors
}
