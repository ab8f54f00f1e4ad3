package diagnose

import "strings"

// parseState tracks progress through the expected response layout.
type parseState int

const (
	seekingAnalysis parseState = iota
	inAnalysis
	seekingFix
	inFix
	done
)

// Parse extracts the analysis and fix sections from arbitrary model output.
// It never fails: malformed input is data, not an error condition. The first
// matched opening sentinel and the first closing sentinel after it win; later
// duplicates are ignored. Text outside recognized regions is discarded.
func Parse(response string) ParsedDiagnosis {
	var d ParsedDiagnosis

	state := seekingAnalysis
	rest := response

	for state != done {
		switch state {
		case seekingAnalysis:
			idx := strings.Index(rest, AnalysisStart)
			if idx < 0 {
				return d
			}
			rest = rest[idx+len(AnalysisStart):]
			state = inAnalysis

		case inAnalysis:
			idx := strings.Index(rest, AnalysisEnd)
			if idx < 0 {
				// Truncated response: keep what we have as analysis so the
				// user still sees a diagnosis, but the pair is malformed.
				d.AnalysisText = strings.TrimSpace(rest)
				return d
			}
			d.AnalysisText = strings.TrimSpace(rest[:idx])
			rest = rest[idx+len(AnalysisEnd):]
			state = seekingFix

		case seekingFix:
			idx := strings.Index(rest, FixStart)
			if idx < 0 {
				return d
			}
			rest = rest[idx+len(FixStart):]
			state = inFix

		case inFix:
			idx := strings.Index(rest, FixEnd)
			if idx < 0 {
				return d
			}
			d.RawScript = stripCodeFences(strings.TrimSpace(rest[:idx]))
			d.WellFormed = true
			state = done
		}
	}

	return d
}

// stripCodeFences removes markdown fences the model sometimes wraps the
// script in despite the contract.
func stripCodeFences(script string) string {
	script = strings.ReplaceAll(script, "```powershell", "")
	script = strings.ReplaceAll(script, "```", "")
	return strings.TrimSpace(script)
}
