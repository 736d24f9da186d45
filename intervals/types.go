package intervals

// Numeric fields are pointers because the upstream omits them freely.

// Athlete is the profile snapshot returned by /athlete/{id}
type Athlete struct {
	ID           string   `json:"id"`
	Name         string   `json:"name,omitempty"`
	CTL          *float64 `json:"ctl"`
	ATL          *float64 `json:"atl"`
	YesterdayTSB *float64 `json:"yesterday_tsb"`
}

// Wellness is one calendar day of wellness readings, oldest first in a window
type Wellness struct {
	ID        string   `json:"id"` // the date, e.g. "2026-10-14"
	HRVSDNN   *float64 `json:"hrvSDNN"`
	RestingHR *float64 `json:"restingHR"`
}

// HasReading reports whether the day carries an HRV or resting HR value.
// Zero counts as missing.
func (w Wellness) HasReading() bool {
	return nonZero(w.HRVSDNN) || nonZero(w.RestingHR)
}

// Activity is one completed training session
type Activity struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Type           string   `json:"type,omitempty"`
	StartDateLocal string   `json:"start_date_local"` // "2026-10-10T07:30:00"
	TrainingLoad   *float64 `json:"icu_training_load"`
	MovingTime     int64    `json:"moving_time"` // sec
}

func nonZero(v *float64) bool {
	return v != nil && *v != 0
}

// Float returns the value or 0 when absent
func Float(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
