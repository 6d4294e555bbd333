// internal/request/draft.go
//
// A Draft is the in-progress tire request form. The TUI mutates it one field at a
// time as the user types; it is only replaced wholesale by Reset.

package request

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxImages is the number of image slots on the form.
const MaxImages = 7

// Field names a form field. The values double as the keys of ValidationErrors and
// as the YAML keys of draft files.
type Field string

const (
	FieldVehicleNo        Field = "vehicleNo"
	FieldVehicleType      Field = "vehicleType"
	FieldVehicleBrand     Field = "vehicleBrand"
	FieldVehicleModel     Field = "vehicleModel"
	FieldUserSection      Field = "userSection"
	FieldReplacementDate  Field = "replacementDate"
	FieldExistingMake     Field = "existingMake"
	FieldTireSize         Field = "tireSize"
	FieldNoOfTires        Field = "noOfTires"
	FieldNoOfTubes        Field = "noOfTubes"
	FieldCostCenter       Field = "costCenter"
	FieldPresentKm        Field = "presentKm"
	FieldPreviousKm       Field = "previousKm"
	FieldWearIndicator    Field = "wearIndicator"
	FieldWearPattern      Field = "wearPattern"
	FieldOfficerServiceNo Field = "officerServiceNo"
	FieldComments         Field = "comments"
)

// ImageField returns the synthetic field key used for the image slot at index.
func ImageField(index int) Field {
	return Field(fmt.Sprintf("image%d", index))
}

// TextFields lists the free-text inputs in form order.
var TextFields = []Field{
	FieldVehicleNo,
	FieldVehicleType,
	FieldVehicleBrand,
	FieldVehicleModel,
	FieldUserSection,
	FieldReplacementDate,
	FieldExistingMake,
	FieldTireSize,
	FieldNoOfTires,
	FieldNoOfTubes,
	FieldCostCenter,
	FieldPresentKm,
	FieldPreviousKm,
	FieldOfficerServiceNo,
}

// RequiredFields are rejected when empty after trimming.
var RequiredFields = TextFields

var fieldLabels = map[Field]string{
	FieldVehicleNo:        "Vehicle No.",
	FieldVehicleType:      "Vehicle Type",
	FieldVehicleBrand:     "Vehicle Brand",
	FieldVehicleModel:     "Vehicle Model",
	FieldUserSection:      "User Section",
	FieldReplacementDate:  "Last Tire Replacement Date",
	FieldExistingMake:     "Make of Existing Tire",
	FieldTireSize:         "Tire Size Required",
	FieldNoOfTires:        "No of Tires Required",
	FieldNoOfTubes:        "No of Tubes Required",
	FieldCostCenter:       "Cost Center",
	FieldPresentKm:        "Present Km Reading",
	FieldPreviousKm:       "Km Reading at Previous Tire Replacement",
	FieldWearIndicator:    "Tire Wear Indicator Appeared",
	FieldWearPattern:      "Tire Wear Pattern",
	FieldOfficerServiceNo: "Approving Officer Service No.",
	FieldComments:         "Comments",
}

// Label returns the human-readable form label.
func (f Field) Label() string {
	if label, ok := fieldLabels[f]; ok {
		return label
	}
	if slot, err := strconv.Atoi(strings.TrimPrefix(string(f), "image")); err == nil && strings.HasPrefix(string(f), "image") {
		return "Image " + strconv.Itoa(slot+1)
	}
	return string(f)
}

// WearIndicator records whether the tire wear indicator has appeared.
type WearIndicator string

const (
	WearIndicatorNo  WearIndicator = "No"
	WearIndicatorYes WearIndicator = "Yes"
)

// WearIndicators lists the options in display order.
var WearIndicators = []WearIndicator{WearIndicatorNo, WearIndicatorYes}

// ParseWearIndicator maps a raw option value onto the enum.
func ParseWearIndicator(value string) (WearIndicator, error) {
	for _, option := range WearIndicators {
		if strings.EqualFold(strings.TrimSpace(value), string(option)) {
			return option, nil
		}
	}
	return "", fmt.Errorf("request: unknown wear indicator %q", value)
}

// WearPattern describes where the tread is worn.
type WearPattern string

const (
	WearPatternOneEdge   WearPattern = "One Edge"
	WearPatternCenter    WearPattern = "Center"
	WearPatternBothEdges WearPattern = "Both Edges"
)

// WearPatterns lists the options in display order.
var WearPatterns = []WearPattern{WearPatternOneEdge, WearPatternCenter, WearPatternBothEdges}

// ParseWearPattern maps a raw option value onto the enum.
func ParseWearPattern(value string) (WearPattern, error) {
	for _, option := range WearPatterns {
		if strings.EqualFold(strings.TrimSpace(value), string(option)) {
			return option, nil
		}
	}
	return "", fmt.Errorf("request: unknown wear pattern %q", value)
}

// Fields holds the string and enum values shared by drafts and submitted requests.
type Fields struct {
	VehicleNo        string        `yaml:"vehicleNo" json:"vehicleNo"`
	VehicleType      string        `yaml:"vehicleType" json:"vehicleType"`
	VehicleBrand     string        `yaml:"vehicleBrand" json:"vehicleBrand"`
	VehicleModel     string        `yaml:"vehicleModel" json:"vehicleModel"`
	UserSection      string        `yaml:"userSection" json:"userSection"`
	ReplacementDate  string        `yaml:"replacementDate" json:"replacementDate"`
	ExistingMake     string        `yaml:"existingMake" json:"existingMake"`
	TireSize         string        `yaml:"tireSize" json:"tireSize"`
	NoOfTires        string        `yaml:"noOfTires" json:"noOfTires"`
	NoOfTubes        string        `yaml:"noOfTubes" json:"noOfTubes"`
	CostCenter       string        `yaml:"costCenter" json:"costCenter"`
	PresentKm        string        `yaml:"presentKm" json:"presentKm"`
	PreviousKm       string        `yaml:"previousKm" json:"previousKm"`
	WearIndicator    WearIndicator `yaml:"wearIndicator" json:"wearIndicator"`
	WearPattern      WearPattern   `yaml:"wearPattern" json:"wearPattern"`
	OfficerServiceNo string        `yaml:"officerServiceNo" json:"officerServiceNo"`
	Comments         string        `yaml:"comments" json:"comments"`
}

// Get returns the raw value of a field. Enum fields return their option text.
func (f *Fields) Get(field Field) string {
	if ptr := f.text(field); ptr != nil {
		return *ptr
	}
	switch field {
	case FieldWearIndicator:
		return string(f.WearIndicator)
	case FieldWearPattern:
		return string(f.WearPattern)
	}
	return ""
}

// Set merges a single field change. Enum fields only accept known options.
func (f *Fields) Set(field Field, value string) error {
	if ptr := f.text(field); ptr != nil {
		*ptr = value
		return nil
	}
	switch field {
	case FieldWearIndicator:
		parsed, err := ParseWearIndicator(value)
		if err != nil {
			return err
		}
		f.WearIndicator = parsed
		return nil
	case FieldWearPattern:
		parsed, err := ParseWearPattern(value)
		if err != nil {
			return err
		}
		f.WearPattern = parsed
		return nil
	}
	return fmt.Errorf("request: unknown field %q", field)
}

func (f *Fields) text(field Field) *string {
	switch field {
	case FieldVehicleNo:
		return &f.VehicleNo
	case FieldVehicleType:
		return &f.VehicleType
	case FieldVehicleBrand:
		return &f.VehicleBrand
	case FieldVehicleModel:
		return &f.VehicleModel
	case FieldUserSection:
		return &f.UserSection
	case FieldReplacementDate:
		return &f.ReplacementDate
	case FieldExistingMake:
		return &f.ExistingMake
	case FieldTireSize:
		return &f.TireSize
	case FieldNoOfTires:
		return &f.NoOfTires
	case FieldNoOfTubes:
		return &f.NoOfTubes
	case FieldCostCenter:
		return &f.CostCenter
	case FieldPresentKm:
		return &f.PresentKm
	case FieldPreviousKm:
		return &f.PreviousKm
	case FieldOfficerServiceNo:
		return &f.OfficerServiceNo
	case FieldComments:
		return &f.Comments
	}
	return nil
}

// Draft is the in-progress request form.
type Draft struct {
	Fields `yaml:",inline"`
	Images [MaxImages]*Attachment `yaml:"-"`
}

// NewDraft returns an empty form with the default option selections.
func NewDraft() Draft {
	return Draft{
		Fields: Fields{
			WearIndicator: WearIndicatorNo,
			WearPattern:   WearPatternOneEdge,
		},
	}
}

// Reset replaces the draft with an empty form.
func (d *Draft) Reset() {
	*d = NewDraft()
}

// SetImage stores (or clears, when att is nil) the attachment at index.
func (d *Draft) SetImage(index int, att *Attachment) error {
	if index < 0 || index >= MaxImages {
		return fmt.Errorf("request: image index %d out of range", index)
	}
	d.Images[index] = att
	return nil
}

// AttachedImages returns the populated image slots in order.
func (d Draft) AttachedImages() []Attachment {
	var out []Attachment
	for _, img := range d.Images {
		if img != nil {
			out = append(out, *img)
		}
	}
	return out
}

// Clone returns a copy that shares no attachment pointers with d.
func (d Draft) Clone() Draft {
	clone := d
	for i, img := range d.Images {
		if img != nil {
			copied := *img
			clone.Images[i] = &copied
		}
	}
	return clone
}
