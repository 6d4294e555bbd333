package request

import (
	"errors"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func validDraft() Draft {
	d := NewDraft()
	d.VehicleNo = "WP-KA-1234"
	d.VehicleType = "Van"
	d.VehicleBrand = "Toyota"
	d.VehicleModel = "HiAce"
	d.UserSection = "Transport"
	d.ReplacementDate = "2024-01-15"
	d.ExistingMake = "Bridgestone"
	d.TireSize = "195/65R15"
	d.NoOfTires = "2"
	d.NoOfTubes = "0"
	d.CostCenter = "CC-1001"
	d.PresentKm = "45000"
	d.PreviousKm = "15000"
	d.OfficerServiceNo = "E1024"
	d.Comments = "Front tires worn"
	return d
}

func TestValidateAcceptsCompleteDraft(t *testing.T) {
	if errs := Validate(validDraft()); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestValidateFieldRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Draft)
		want   map[Field]string
	}{
		{
			name:   "empty vehicle number",
			mutate: func(d *Draft) { d.VehicleNo = "" },
			want:   map[Field]string{FieldVehicleNo: MsgRequired},
		},
		{
			name:   "whitespace only type",
			mutate: func(d *Draft) { d.VehicleType = "   " },
			want:   map[Field]string{FieldVehicleType: MsgRequired},
		},
		{
			name:   "vehicle number too long",
			mutate: func(d *Draft) { d.VehicleNo = "ABCDEFGHIJK" },
			want:   map[Field]string{FieldVehicleNo: MsgMax10},
		},
		{
			name:   "cost center too long",
			mutate: func(d *Draft) { d.CostCenter = strings.Repeat("C", 16) },
			want:   map[Field]string{FieldCostCenter: MsgMax15},
		},
		{
			name:   "officer id too long",
			mutate: func(d *Draft) { d.OfficerServiceNo = "E1234567890" },
			want:   map[Field]string{FieldOfficerServiceNo: MsgMax10},
		},
		{
			name:   "comment too long",
			mutate: func(d *Draft) { d.Comments = strings.Repeat("x", 501) },
			want:   map[Field]string{FieldComments: MsgMax500},
		},
		{
			name:   "comment limit counts characters",
			mutate: func(d *Draft) { d.Comments = strings.Repeat("é", 500) },
			want:   map[Field]string{},
		},
		{
			name:   "present below previous",
			mutate: func(d *Draft) { d.PresentKm = "100"; d.PreviousKm = "150" },
			want:   map[Field]string{FieldPresentKm: MsgOdometerOrdering},
		},
		{
			name:   "present equals previous",
			mutate: func(d *Draft) { d.PresentKm = "150"; d.PreviousKm = "150" },
			want:   map[Field]string{},
		},
		{
			name:   "present zero",
			mutate: func(d *Draft) { d.PresentKm = "0"; d.PreviousKm = "0" },
			want:   map[Field]string{FieldPresentKm: MsgPositiveNumber},
		},
		{
			name:   "present not numeric",
			mutate: func(d *Draft) { d.PresentKm = "12km" },
			want:   map[Field]string{FieldPresentKm: MsgPositiveNumber},
		},
		{
			name:   "previous negative",
			mutate: func(d *Draft) { d.PreviousKm = "-5" },
			want:   map[Field]string{FieldPreviousKm: MsgZeroOrMore},
		},
		{
			name:   "whitespace odometer fails numeric rule",
			mutate: func(d *Draft) { d.PresentKm = "  " },
			want:   map[Field]string{FieldPresentKm: MsgPositiveNumber},
		},
		{
			name:   "huge readings compare without overflow",
			mutate: func(d *Draft) { d.PresentKm = "99999999999999999999999"; d.PreviousKm = "100000000000000000000000" },
			want:   map[Field]string{FieldPresentKm: MsgOdometerOrdering},
		},
		{
			name:   "zero tires",
			mutate: func(d *Draft) { d.NoOfTires = "0" },
			want:   map[Field]string{FieldNoOfTires: MsgTiresPositive},
		},
		{
			name:   "tubes not numeric",
			mutate: func(d *Draft) { d.NoOfTubes = "two" },
			want:   map[Field]string{FieldNoOfTubes: MsgTubesNonNegative},
		},
		{
			name: "non image attachment",
			mutate: func(d *Draft) {
				d.Images[0] = &Attachment{Name: "a.png", ContentType: "image/png"}
				d.Images[3] = &Attachment{Name: "notes.txt", ContentType: "text/plain; charset=utf-8"}
			},
			want: map[Field]string{ImageField(3): MsgInvalidImage},
		},
		{
			name: "all violations reported together",
			mutate: func(d *Draft) {
				d.VehicleBrand = ""
				d.NoOfTires = "x"
				d.Images[6] = &Attachment{Name: "clip.mp4", ContentType: "video/mp4"}
			},
			want: map[Field]string{
				FieldVehicleBrand: MsgRequired,
				FieldNoOfTires:    MsgTiresPositive,
				ImageField(6):     MsgInvalidImage,
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			d := validDraft()
			test.mutate(&d)
			got := Validate(d)
			if len(got) != len(test.want) {
				t.Fatalf("errors = %v, want %v", got, test.want)
			}
			for field, msg := range test.want {
				if got[field] != msg {
					t.Fatalf("errors[%s] = %q, want %q (all: %v)", field, got[field], msg, got)
				}
			}
		})
	}
}

func TestValidationErrorsMatchSentinel(t *testing.T) {
	d := validDraft()
	d.VehicleNo = ""
	err := Validate(d).Err()
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected errors.Is(err, ErrValidation)")
	}
	if !strings.Contains(err.Error(), "vehicleNo") {
		t.Fatalf("error text %q should name the field", err.Error())
	}
	if Validate(validDraft()).Err() != nil {
		t.Fatalf("valid draft should yield nil error")
	}
}

func TestValidationErrorsFieldsInFormOrder(t *testing.T) {
	errs := ValidationErrors{
		ImageField(2):         MsgInvalidImage,
		FieldComments:         MsgMax500,
		FieldVehicleNo:        MsgRequired,
		FieldOfficerServiceNo: MsgRequired,
	}
	got := errs.Fields()
	want := []Field{FieldVehicleNo, FieldOfficerServiceNo, FieldComments, ImageField(2)}
	if len(got) != len(want) {
		t.Fatalf("fields = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("fields = %v, want %v", got, want)
		}
	}
}

func TestValidateEditSkipsImages(t *testing.T) {
	s := Freeze(validDraft(), 1, zeroTime)
	s.PresentKm = "1"
	s.PreviousKm = "2"
	errs := ValidateEdit(s)
	if errs[FieldPresentKm] != MsgOdometerOrdering || len(errs) != 1 {
		t.Fatalf("unexpected edit errors: %v", errs)
	}
}

func TestPropertyMissingRequiredFieldIsReported(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d := validDraft()
		field := rapid.SampledFrom(RequiredFields).Draw(t, "field")
		blank := rapid.StringMatching(`[ \t]{0,4}`).Draw(t, "blank")
		if err := d.Set(field, blank); err != nil {
			t.Fatalf("set %s: %v", field, err)
		}
		errs := Validate(d)
		if len(errs) == 0 {
			t.Fatalf("draft missing %s passed validation", field)
		}
		if _, ok := errs[field]; !ok {
			t.Fatalf("errors %v missing key %s", errs, field)
		}
	})
}

func TestPropertyOdometerOrdering(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		previous := rapid.Uint64Range(1, 1<<40).Draw(t, "previous")
		present := rapid.Uint64Range(0, previous-1).Draw(t, "present")
		d := validDraft()
		d.PresentKm = formatUint(present)
		d.PreviousKm = formatUint(previous)
		errs := Validate(d)
		if errs[FieldPresentKm] != MsgOdometerOrdering {
			t.Fatalf("present=%d previous=%d: errors %v", present, previous, errs)
		}
	})
}

func TestPropertyOrderedReadingsPass(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		previous := rapid.Uint64Range(0, 1<<40).Draw(t, "previous")
		present := rapid.Uint64Range(previous, 1<<41).Draw(t, "present")
		if present == 0 {
			present = 1
		}
		d := validDraft()
		d.PresentKm = formatUint(present)
		d.PreviousKm = formatUint(previous)
		if errs := Validate(d); len(errs) != 0 {
			t.Fatalf("present=%d previous=%d: unexpected errors %v", present, previous, errs)
		}
	})
}
