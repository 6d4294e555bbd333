package request

import (
	"fmt"
	"time"
)

// Submitted is a draft accepted by the backend and shown in the review list.
// Image handles are not retained; only their display labels survive.
type Submitted struct {
	Fields      `yaml:",inline"`
	ID          int64     `yaml:"id" json:"id"`
	ImageLabels []string  `yaml:"images,omitempty" json:"images,omitempty"`
	SubmittedAt time.Time `yaml:"submittedAt" json:"submittedAt"`
}

// Freeze snapshots the draft into a submitted request with the given identifier.
func Freeze(d Draft, id int64, at time.Time) Submitted {
	s := Submitted{
		Fields:      d.Fields,
		ID:          id,
		SubmittedAt: at,
	}
	for _, img := range d.AttachedImages() {
		s.ImageLabels = append(s.ImageLabels, img.Label())
	}
	return s
}

// Clone returns a deep copy.
func (s Submitted) Clone() Submitted {
	clone := s
	if s.ImageLabels != nil {
		clone.ImageLabels = append([]string(nil), s.ImageLabels...)
	}
	return clone
}

// ImageSummary renders the image labels as a count for table cells.
func (s Submitted) ImageSummary() string {
	switch n := len(s.ImageLabels); n {
	case 0:
		return "none"
	case 1:
		return "1 image"
	default:
		return fmt.Sprintf("%d images", n)
	}
}
