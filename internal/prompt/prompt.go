// Package prompt assembles the system prompt for the training assistant from
// live metrics and stored learnings
package prompt

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/briangreenhill/trainingagent/intervals"
	"github.com/briangreenhill/trainingagent/learnings"
	"github.com/briangreenhill/trainingagent/recovery"
)

// RecentActivities is how many of the latest activities go into the context
const RecentActivities = 5

// BuildContext renders the context block sent as the system prompt. Every
// argument may be nil or empty.
func BuildContext(profile *intervals.Athlete, a *recovery.Assessment, activities []intervals.Activity, doc learnings.Document) string {
	var b strings.Builder

	b.WriteString("Context from the Training Agent project:\n\n")
	b.WriteString("Athlete data (live):\n")
	fmt.Fprintf(&b, "- CTL: %s\n", profileValue(profile, func(p *intervals.Athlete) *float64 { return p.CTL }))
	fmt.Fprintf(&b, "- ATL: %s\n", profileValue(profile, func(p *intervals.Athlete) *float64 { return p.ATL }))
	fmt.Fprintf(&b, "- TSB: %s\n", profileValue(profile, func(p *intervals.Athlete) *float64 { return p.YesterdayTSB }))

	if a != nil {
		fmt.Fprintf(&b, "- Recovery Score: %.1f/10\n", a.Score)
		fmt.Fprintf(&b, "- HRV: %s (%s)\n", withUnit(a.Latest.HRVSDNN, "ms"), signedPct(a.HRVDeltaPct))
		fmt.Fprintf(&b, "- Resting HR: %s (%s)\n", withUnit(a.Latest.RestingHR, "bpm"), signedPct(a.RHRDeltaPct))
	} else {
		fmt.Fprintf(&b, "- Recovery Score: %s/10\n", NotAvailable)
		fmt.Fprintf(&b, "- HRV: %s\n", NotAvailable)
		fmt.Fprintf(&b, "- Resting HR: %s\n", NotAvailable)
	}

	fmt.Fprintf(&b, "\nLast %d activities:\n", RecentActivities)
	b.WriteString(FormatActivities(activities))

	b.WriteString("\nLearned preferences:\n")
	b.WriteString(doc.Indent())
	b.WriteString("\n\n")

	b.WriteString(saveInstruction)
	b.WriteString("\n\n")
	b.WriteString(GetInstruction())

	return b.String()
}

// FormatActivities lists the last RecentActivities entries in upstream order
func FormatActivities(activities []intervals.Activity) string {
	if len(activities) > RecentActivities {
		activities = activities[len(activities)-RecentActivities:]
	}
	if len(activities) == 0 {
		return "- none\n"
	}

	var b strings.Builder
	for _, act := range activities {
		name := act.Name
		if name == "" {
			name = "Training"
		}
		fmt.Fprintf(&b, "- %s: %s (%s TSS, %.1fh)\n",
			FormatDay(act.StartDateLocal), name, rounded(act.TrainingLoad), float64(act.MovingTime)/3600)
	}
	return b.String()
}

// Welcome is the first assistant message after a successful connect
func Welcome(profile *intervals.Athlete, activityCount int) string {
	var b strings.Builder
	b.WriteString("✅ Connected!\n\n")
	b.WriteString("Current form:\n")
	fmt.Fprintf(&b, "• CTL: %s\n", profileValue(profile, func(p *intervals.Athlete) *float64 { return p.CTL }))
	fmt.Fprintf(&b, "• ATL: %s\n", profileValue(profile, func(p *intervals.Athlete) *float64 { return p.ATL }))
	fmt.Fprintf(&b, "• TSB: %s\n\n", profileValue(profile, func(p *intervals.Athlete) *float64 { return p.YesterdayTSB }))
	fmt.Fprintf(&b, "I loaded %d activities and your earlier learnings. What would you like to know?", activityCount)
	return b.String()
}

var startLayouts = []string{
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// FormatDay renders an upstream local timestamp as D.M.YYYY
func FormatDay(s string) string {
	for _, layout := range startLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2.1.2006")
		}
	}
	return NotAvailable
}

func profileValue(p *intervals.Athlete, field func(*intervals.Athlete) *float64) string {
	if p == nil {
		return NotAvailable
	}
	return rounded(field(p))
}

func rounded(v *float64) string {
	if v == nil || math.IsNaN(*v) {
		return NotAvailable
	}
	return strconv.FormatFloat(math.Round(*v), 'f', 0, 64)
}

func withUnit(v *float64, unit string) string {
	if v == nil || math.IsNaN(*v) {
		return NotAvailable
	}
	return strconv.FormatFloat(*v, 'f', -1, 64) + unit
}

func signedPct(v float64) string {
	if math.IsNaN(v) {
		return NotAvailable
	}
	sign := ""
	if v > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.1f%%", sign, v)
}
