package request

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// ErrValidation is matched by every ValidationErrors value via errors.Is.
var ErrValidation = errors.New("validation error")

// Messages surfaced next to the offending input.
const (
	MsgRequired         = "This field is required"
	MsgMax10            = "Max 10 characters"
	MsgMax15            = "Max 15 characters"
	MsgMax500           = "Max 500 characters"
	MsgPositiveNumber   = "Must be a positive number"
	MsgZeroOrMore       = "Must be 0 or more"
	MsgOdometerOrdering = "Present KM must be ≥ Previous KM"
	MsgTiresPositive    = "Must be a number > 0"
	MsgTubesNonNegative = "Must be a number ≥ 0"
	MsgInvalidImage     = "Invalid image file"
)

var unsignedInt = regexp.MustCompile(`^\d+$`)

// ValidationErrors maps a field to the message describing why it was rejected.
// It is recomputed from scratch on every submit attempt.
type ValidationErrors map[Field]string

// Error lists the violations in form order.
func (v ValidationErrors) Error() string {
	keys := v.Fields()
	if len(keys) == 1 {
		return fmt.Sprintf("validation: %s: %s", keys[0], v[keys[0]])
	}
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", key, v[key]))
	}
	return fmt.Sprintf("validation: %d errors (%s)", len(keys), strings.Join(parts, "; "))
}

// Unwrap lets callers match ErrValidation.
func (v ValidationErrors) Unwrap() error { return ErrValidation }

// Err returns v as an error, or nil when there are no violations.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// Fields returns the offending field keys in form order.
func (v ValidationErrors) Fields() []Field {
	keys := make([]Field, 0, len(v))
	for key := range v {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		oi, oj := fieldOrder(keys[i]), fieldOrder(keys[j])
		if oi != oj {
			return oi < oj
		}
		return keys[i] < keys[j]
	})
	return keys
}

func fieldOrder(f Field) int {
	for i, candidate := range TextFields {
		if candidate == f {
			return i
		}
	}
	switch f {
	case FieldWearIndicator:
		return len(TextFields)
	case FieldWearPattern:
		return len(TextFields) + 1
	case FieldComments:
		return len(TextFields) + 2
	}
	for i := 0; i < MaxImages; i++ {
		if ImageField(i) == f {
			return len(TextFields) + 3 + i
		}
	}
	return len(TextFields) + 3 + MaxImages
}

// Validate evaluates every rule against the draft. Rules run in a fixed order and a
// later rule replaces an earlier message for the same field.
func Validate(d Draft) ValidationErrors {
	errs := validateFields(d.Fields)
	for i, img := range d.Images {
		if img != nil && !img.IsImage() {
			errs[ImageField(i)] = MsgInvalidImage
		}
	}
	return errs
}

// ValidateEdit applies the field rules to an edited review-list entry.
func ValidateEdit(s Submitted) ValidationErrors {
	return validateFields(s.Fields)
}

func validateFields(f Fields) ValidationErrors {
	errs := ValidationErrors{}

	for _, field := range RequiredFields {
		if strings.TrimSpace(f.Get(field)) == "" {
			errs[field] = MsgRequired
		}
	}

	maxLen := func(field Field, limit int, msg string) {
		if utf8.RuneCountInString(f.Get(field)) > limit {
			errs[field] = msg
		}
	}
	maxLen(FieldVehicleNo, 10, MsgMax10)
	maxLen(FieldCostCenter, 15, MsgMax15)
	maxLen(FieldOfficerServiceNo, 10, MsgMax10)
	maxLen(FieldComments, 500, MsgMax500)

	if f.PresentKm != "" && (!unsignedInt.MatchString(f.PresentKm) || !positive(f.PresentKm)) {
		errs[FieldPresentKm] = MsgPositiveNumber
	}
	if f.PreviousKm != "" && !unsignedInt.MatchString(f.PreviousKm) {
		errs[FieldPreviousKm] = MsgZeroOrMore
	}
	if unsignedInt.MatchString(f.PresentKm) && unsignedInt.MatchString(f.PreviousKm) &&
		compareDigits(f.PresentKm, f.PreviousKm) < 0 {
		errs[FieldPresentKm] = MsgOdometerOrdering
	}

	if f.NoOfTires != "" && (!unsignedInt.MatchString(f.NoOfTires) || !positive(f.NoOfTires)) {
		errs[FieldNoOfTires] = MsgTiresPositive
	}
	if f.NoOfTubes != "" && !unsignedInt.MatchString(f.NoOfTubes) {
		errs[FieldNoOfTubes] = MsgTubesNonNegative
	}

	return errs
}

// positive reports whether a digit string encodes a value > 0.
func positive(digits string) bool {
	return strings.TrimLeft(digits, "0") != ""
}

// compareDigits orders two unsigned decimal strings of any length.
func compareDigits(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}
