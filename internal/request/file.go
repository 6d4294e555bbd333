package request

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// draftFile is the on-disk YAML shape of a draft. Image paths are resolved
// relative to the file's directory.
type draftFile struct {
	Fields `yaml:",inline"`
	Images []string `yaml:"images,omitempty"`
}

// Report summarizes the validation of a draft file.
type Report struct {
	Path   string
	Draft  Draft
	Errors ValidationErrors
}

// IsValid reports whether the validation passed.
func (r *Report) IsValid() bool {
	return r != nil && len(r.Errors) == 0
}

// LoadDraftFile parses a YAML draft and loads any referenced images.
func LoadDraftFile(path string) (Draft, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Draft{}, fmt.Errorf("request: read draft file: %w", err)
	}
	return ParseDraft(data, filepath.Dir(path))
}

// ParseDraft decodes YAML draft content. baseDir anchors relative image paths.
func ParseDraft(data []byte, baseDir string) (Draft, error) {
	var raw draftFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Draft{}, fmt.Errorf("request: parse draft: %w", err)
	}
	if len(raw.Images) > MaxImages {
		return Draft{}, fmt.Errorf("request: draft lists %d images, at most %d allowed", len(raw.Images), MaxImages)
	}

	draft := NewDraft()
	draft.Fields = raw.Fields
	draft.WearIndicator = WearIndicatorNo
	draft.WearPattern = WearPatternOneEdge
	if v := strings.TrimSpace(string(raw.WearIndicator)); v != "" {
		parsed, err := ParseWearIndicator(v)
		if err != nil {
			return Draft{}, err
		}
		draft.WearIndicator = parsed
	}
	if v := strings.TrimSpace(string(raw.WearPattern)); v != "" {
		parsed, err := ParseWearPattern(v)
		if err != nil {
			return Draft{}, err
		}
		draft.WearPattern = parsed
	}

	for i, imgPath := range raw.Images {
		imgPath = strings.TrimSpace(imgPath)
		if imgPath == "" {
			continue
		}
		if !filepath.IsAbs(imgPath) && baseDir != "" {
			imgPath = filepath.Join(baseDir, imgPath)
		}
		att, err := LoadAttachment(imgPath)
		if err != nil {
			return Draft{}, fmt.Errorf("request: images[%d]: %w", i, err)
		}
		draft.Images[i] = att
	}
	return draft, nil
}

// ValidateDraftFile loads and validates a YAML draft file.
func ValidateDraftFile(path string) (*Report, error) {
	draft, err := LoadDraftFile(path)
	if err != nil {
		return nil, err
	}
	return &Report{
		Path:   path,
		Draft:  draft,
		Errors: Validate(draft),
	}, nil
}
