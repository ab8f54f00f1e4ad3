package diagnose

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Guettaf-hossam/SuperDiagnosticTool/internal/telemetry"
)

// promptPreamble carries the role, the script requirements and the sentinel
// output contract. Strict and prescriptive so the parser sees predictable
// structure. The example sections are static text only; telemetry values are
// never echoed inside sentinel regions, which keeps an injected duplicate
// sentinel in telemetry from truncating the real sections.
var promptPreamble = fmt.Sprintf(`ROLE: Senior Windows Systems Engineer & Security Analyst.
CONTEXT: User is reporting system issues. Telemetry data is attached.

TASK:
1. ANALYZE: Correlate user report with system metrics.
2. AUDIT: Review process list for anomalies (resource leaks, unknown binaries, potential malware).
3. REPORT: Generate a technical diagnosis in HTML format.
4. REMEDIATION: Generate a PowerShell script to resolve identified issues.

   POWERSHELL SCRIPT REQUIREMENTS:
   - Start with admin privilege check (exit if not admin)
   - Use 'Write-Host' for all logging with color coding
   - When using variables followed by colons, wrap in $(): e.g., "$($path):" not "$path:"
   - Before stopping, disabling or restarting any service: check existence with Get-Service -ErrorAction SilentlyContinue first
   - All service operations must use -ErrorAction SilentlyContinue
   - Operations must be non-destructive (no data loss); delete only temp/cache locations
   - Include Try/Catch blocks for critical operations

OUTPUT STRUCTURE (use these exact markers, exactly once each):

%s
<h3>Maintenance Report: Operations Completed</h3>
<p>List completed actions using [FIXED], [CLEANED], [DISABLED] tags in past tense.</p>
<ul>
    <li>[FIXED] Disabled crashing Intel service (esrv_svc)</li>
    <li>[CLEANED] Removed temporary files from system cache</li>
</ul>

<h3>Manual Attention Required</h3>
<p>Items that require user intervention or cannot be automated.</p>
<ul>
    <li>Update graphics driver manually from manufacturer website</li>
</ul>
%s

%s
$intelServices = @('esrv_svc', 'SurSvc', 'esrv')
foreach ($svc in $intelServices) {
    $service = Get-Service -Name $svc -ErrorAction SilentlyContinue
    if ($service) {
        Stop-Service -Name $svc -Force -ErrorAction SilentlyContinue
        Set-Service -Name $svc -StartupType Disabled -ErrorAction SilentlyContinue
        Write-Host "Disabled: $($svc)" -ForegroundColor Green
    }
}
%s
`, AnalysisStart, AnalysisEnd, FixStart, FixEnd)

// PromptBuilder renders a telemetry snapshot plus the user's problem text into
// a single model request. Pure: always produces a well-formed request, even
// for empty or garbage user text. That text is opaque data, never interpreted.
type PromptBuilder struct {
	// Categories limits which snapshot categories are included; empty means
	// all. Configuration input, set per scan depth.
	Categories []string
}

// Build assembles the request payload. The snapshot is only read.
func (b *PromptBuilder) Build(snapshot telemetry.Snapshot, userText string) string {
	included := snapshot
	if len(b.Categories) > 0 {
		included = snapshot.Filter(b.Categories)
	}

	payload, err := json.Marshal(included)
	if err != nil {
		// A snapshot is plain maps of scalars; marshal cannot realistically
		// fail, but an empty object keeps the request well formed if it does.
		payload = []byte("{}")
	}

	var sb strings.Builder
	sb.WriteString(promptPreamble)
	sb.WriteString("\nUSER COMPLAINT: \"")
	sb.WriteString(userText)
	sb.WriteString("\"\nTELEMETRY:\n")
	sb.Write(payload)
	sb.WriteString("\n")
	return sb.String()
}
