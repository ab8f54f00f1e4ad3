package diagnose

// Sentinel tokens delimiting the two sections of a model response. These are
// the single shared contract between the prompt builder and the response
// parser. Both sides must reference these constants, never inline copies.
const (
	AnalysisStart = "[ANALYSIS_START]"
	AnalysisEnd   = "[ANALYSIS_END]"
	FixStart      = "[FIX_START]"
	FixEnd        = "[FIX_END]"
)

// ParsedDiagnosis is the structured view of a free-form model response.
// WellFormed is false when either sentinel pair is absent or malformed;
// callers must treat that as "no remediation available", never as a fault.
type ParsedDiagnosis struct {
	AnalysisText string
	RawScript    string
	WellFormed   bool
}
