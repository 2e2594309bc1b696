package verification

// Outcome classifies one verification attempt.
type Outcome int

const (
	Matched Outcome = iota + 1
	NotMatched
	NotEnrolled
	ExtractionFailed
)

func (o Outcome) String() string {
	switch o {
	case Matched:
		return "matched"
	case NotMatched:
		return "not_matched"
	case NotEnrolled:
		return "not_enrolled"
	case ExtractionFailed:
		return "extraction_failed"
	default:
		return "unknown"
	}
}

// Decision is the result handed to the attendance engine. Image is the
// live capture and is only set when the outcome is not Matched, for
// manual review.
type Decision struct {
	Outcome  Outcome
	Distance float64 // set when a comparison ran
	Image    []byte
	Detail   string
}

func (d Decision) Verified() bool { return d.Outcome == Matched }
