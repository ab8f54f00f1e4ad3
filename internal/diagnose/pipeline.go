package diagnose

import (
	"context"

	"github.com/Guettaf-hossam/SuperDiagnosticTool/internal/llm"
	"github.com/Guettaf-hossam/SuperDiagnosticTool/internal/logger"
	"github.com/Guettaf-hossam/SuperDiagnosticTool/internal/safety"
	"github.com/Guettaf-hossam/SuperDiagnosticTool/internal/telemetry"
)

// Outcome is everything a run produced up to the confirmation boundary.
// Script is sanitized and validated but not executed; execution is the
// caller's decision after showing the user the script and the safety report.
type Outcome struct {
	Diagnosis ParsedDiagnosis
	Script    string // sanitized; empty when no remediation is available
	Safety    safety.SafetyReport
}

// Remediable reports whether an executable script is on offer: one was
// extracted, sanitized and passed every safety rule.
func (o *Outcome) Remediable() bool {
	return o.Script != "" && o.Safety.Passed
}

// Pipeline wires the diagnosis stages together in their mandatory order:
// build prompt, call model, parse, sanitize, validate. No raw model script
// can reach the executor except through this sequence.
type Pipeline struct {
	Model   llm.LLM
	Builder PromptBuilder
}

// Run performs one full diagnosis. A transport failure or timeout is not an
// error here: it degrades to an empty model response fed through the parser,
// exactly like any other malformed output, so diagnosis and remediation both
// come back empty and the caller reports "no AI analysis available".
func (p *Pipeline) Run(ctx context.Context, snapshot telemetry.Snapshot, userText string) *Outcome {
	prompt := p.Builder.Build(snapshot, userText)

	response, err := p.Model.Generate(ctx, prompt)
	if err != nil {
		logger.Error("Model call failed, degrading to empty response: %v", err)
		response = ""
	}

	parsed := Parse(response)

	out := &Outcome{Diagnosis: parsed}
	if parsed.RawScript == "" {
		// No remediation offered; diagnosis text (if any) is still shown.
		return out
	}

	out.Script = safety.Sanitize(parsed.RawScript)
	out.Safety = safety.Validate(out.Script)

	if !out.Safety.Passed {
		logger.Info("Remediation script rejected: %d safety violations", len(out.Safety.Violations))
	}

	return out
}
