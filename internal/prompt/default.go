package prompt

import "github.com/briangreenhill/trainingagent/learnings"

// NotAvailable replaces any value the upstream did not provide
const NotAvailable = "N/A"

// saveInstruction tells the assistant how to flag a note for the learnings store
const saveInstruction = `If the athlete tells you a preference or fact worth keeping, confirm it on its own line as "` +
	learnings.MarkerSaved + ` <note>" or "` + learnings.MarkerRemember + ` <note>". Use this only for new, durable preferences.`

// GetInstruction returns the fixed coaching instruction closing every context block
func GetInstruction() string {
	return `IMPORTANT: Be objective and critical. Analyse the data soberly. No flattery.`
}
