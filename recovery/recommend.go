package recovery

type Status string

const (
	StatusUnknown  Status = "unknown"
	StatusGo       Status = "GO"
	StatusModify   Status = "MODIFY"
	StatusRecovery Status = "RECOVERY"
)

type Recommendation struct {
	Status Status `json:"status"`
	Text   string `json:"text"`
	Detail string `json:"detail,omitempty"`
}

// Recommend maps a score band to a training recommendation. Each band
// includes its lower bound.
func Recommend(a *Assessment) Recommendation {
	if a == nil {
		return Recommendation{Status: StatusUnknown, Text: "no data"}
	}
	switch {
	case a.Score >= 8:
		return Recommendation{
			Status: StatusGo,
			Text:   "normal training",
			Detail: "HRV and resting HR look good. Train as planned.",
		}
	case a.Score >= 6:
		return Recommendation{
			Status: StatusModify,
			Text:   "adjust training",
			Detail: "Consider lowering intensity or swapping intervals for more Z2.",
		}
	default:
		return Recommendation{
			Status: StatusRecovery,
			Text:   "low-intensity recommended",
			Detail: "Your body needs recovery. Easy session or a rest day only.",
		}
	}
}
