package contamination

// Status classifies a rare-event power estimate. INSUFFICIENT_EVENTS is an
// expected planning outcome, not an error: the requested design simply will
// not see enough onsets to measure anything.
type Status string

const (
	StatusOK                 Status = "OK"
	StatusInsufficientEvents Status = "INSUFFICIENT_EVENTS"
)

// minEventsForPower is the smallest expected event count that still gives a
// usable detection-rate estimate.
const minEventsForPower = 5.0

// Estimate is the expected contamination yield of a candidate design.
type Estimate struct {
	Vessels        int     `json:"vessels"`
	Days           float64 `json:"days"`
	RatePerDay     float64 `json:"rate_per_vessel_day"`
	ExpectedEvents float64 `json:"expected_events"`
	Status         Status  `json:"status"`
}

// EstimateEvents computes the expected onset count for a design of nVessels
// cultured for the given number of days at the model's effective rate.
func (m *Model) EstimateEvents(nVessels int, days float64) Estimate {
	rate := 0.0
	if m.Enabled() {
		rate = m.ratePerDay
	}
	expected := float64(nVessels) * days * rate
	status := StatusOK
	if expected < minEventsForPower {
		status = StatusInsufficientEvents
	}
	return Estimate{
		Vessels:        nVessels,
		Days:           days,
		RatePerDay:     rate,
		ExpectedEvents: expected,
		Status:         status,
	}
}
