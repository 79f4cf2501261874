package selector

import (
	"errors"
	"time"

	"go.ntppool.org/imagerotate/catalog"
)

// DefaultRecencySize is how many recently shown images are excluded.
const DefaultRecencySize = 5

// ErrNoEligibleImage is returned when no image can be shown for a request,
// even after exhausted quotas were reset.
var ErrNoEligibleImage = errors.New("no eligible image")

// selectionResult labels the outcome of a selection in metrics
type selectionResult string

const (
	resultOK          selectionResult = "ok"
	resultNoEligible  selectionResult = "no_eligible"
	resultQuotaBroken selectionResult = "error"
)

// Status is a point in time view of the selector state.
type Status struct {
	Images   []catalog.Image
	Recent   []string
	Time     time.Time
	Capacity int
}
