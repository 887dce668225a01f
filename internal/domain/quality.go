package domain

import "fmt"

// Quality is a per-user video resolution ceiling.
type Quality string

const (
	QualityBest   Quality = "best"
	QualityMedium Quality = "medium"
	QualityLow    Quality = "low"
)

// DefaultQuality is used for identities that never picked a preference.
const DefaultQuality = QualityBest

// Qualities lists every supported preference in display order.
var Qualities = []Quality{QualityBest, QualityMedium, QualityLow}

// ParseQuality validates a raw preference string.
func ParseQuality(s string) (Quality, error) {
	q := Quality(s)
	if !q.Valid() {
		return "", fmt.Errorf("unknown quality %q", s)
	}
	return q, nil
}

// Valid reports whether q is one of the supported preferences.
func (q Quality) Valid() bool {
	switch q {
	case QualityBest, QualityMedium, QualityLow:
		return true
	}
	return false
}

// Description is the human readable ceiling shown next to the preference name.
func (q Quality) Description() string {
	switch q {
	case QualityMedium:
		return "480p"
	case QualityLow:
		return "240p"
	default:
		return "best available"
	}
}

func (q Quality) String() string {
	return string(q)
}
