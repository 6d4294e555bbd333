package request

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidateDraftFile(t *testing.T) {
	tests := []struct {
		name      string
		yaml      string
		wantValid bool
		wantKeys  []Field
	}{
		{
			name: "complete-draft",
			yaml: `vehicleNo: WP-KA-1234
vehicleType: Van
vehicleBrand: Toyota
vehicleModel: HiAce
userSection: Transport
replacementDate: "2024-01-15"
existingMake: Bridgestone
tireSize: 195/65R15
noOfTires: "2"
noOfTubes: "0"
costCenter: CC-1001
presentKm: "45000"
previousKm: "15000"
wearIndicator: "Yes"
wearPattern: Center
officerServiceNo: E1024
images:
  - tire.png
`,
			wantValid: true,
		},
		{
			name: "odometer-reversed",
			yaml: `vehicleNo: WP-KA-1234
vehicleType: Van
vehicleBrand: Toyota
vehicleModel: HiAce
userSection: Transport
replacementDate: "2024-01-15"
existingMake: Bridgestone
tireSize: 195/65R15
noOfTires: "2"
noOfTubes: "0"
costCenter: CC-1001
presentKm: "100"
previousKm: "150"
officerServiceNo: E1024
`,
			wantValid: false,
			wantKeys:  []Field{FieldPresentKm},
		},
		{
			name:      "mostly-empty",
			yaml:      "comments: nothing else filled in\n",
			wantValid: false,
			wantKeys:  RequiredFields,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			dir := t.TempDir()
			png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 16)...)
			if err := os.WriteFile(filepath.Join(dir, "tire.png"), png, 0o644); err != nil {
				t.Fatalf("write image: %v", err)
			}
			path := filepath.Join(dir, "draft.yaml")
			if err := os.WriteFile(path, []byte(test.yaml), 0o644); err != nil {
				t.Fatalf("write draft: %v", err)
			}
			report, err := ValidateDraftFile(path)
			if err != nil {
				t.Fatalf("validate draft file: %v", err)
			}
			if report.IsValid() != test.wantValid {
				t.Fatalf("valid=%v want=%v errors=%v", report.IsValid(), test.wantValid, report.Errors)
			}
			for _, key := range test.wantKeys {
				if _, ok := report.Errors[key]; !ok {
					t.Fatalf("expected error for %s, got %v", key, report.Errors)
				}
			}
		})
	}
}

func TestParseDraftOptionsAndImages(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "photo.jpg"), []byte("\xff\xd8\xff\xe0rest"), 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}
	draft, err := ParseDraft([]byte("wearIndicator: yes\nwearPattern: both edges\nimages:\n  - photo.jpg\n"), dir)
	if err != nil {
		t.Fatalf("parse draft: %v", err)
	}
	if draft.WearIndicator != WearIndicatorYes || draft.WearPattern != WearPatternBothEdges {
		t.Fatalf("options = %q / %q", draft.WearIndicator, draft.WearPattern)
	}
	if draft.Images[0] == nil || draft.Images[0].ContentType != "image/jpeg" {
		t.Fatalf("image not loaded: %+v", draft.Images[0])
	}

	defaults, err := ParseDraft([]byte("vehicleNo: X\n"), dir)
	if err != nil {
		t.Fatalf("parse defaults: %v", err)
	}
	if defaults.WearIndicator != WearIndicatorNo || defaults.WearPattern != WearPatternOneEdge {
		t.Fatalf("defaults = %q / %q", defaults.WearIndicator, defaults.WearPattern)
	}

	if _, err := ParseDraft([]byte("wearPattern: Sideways\n"), dir); err == nil {
		t.Fatalf("expected unknown wear pattern to fail")
	}
	if _, err := ParseDraft([]byte("images: [a, b, c, d, e, f, g, h]\n"), dir); err == nil {
		t.Fatalf("expected too many images to fail")
	}
	if _, err := ParseDraft([]byte("images: [missing.png]\n"), dir); err == nil {
		t.Fatalf("expected missing image to fail")
	}
}
