package report

import (
	"os"
	"strings"
	"testing"

	"github.com/Guettaf-hossam/SuperDiagnosticTool/internal/executor"
	"github.com/Guettaf-hossam/SuperDiagnosticTool/internal/telemetry"
)

const sampleAnalysis = Fragment(`<h3>Maintenance Report: Operations Completed</h3>
<ul>
    <li>[FIXED] Disabled crashing Intel service (esrv_svc)</li>
    <li>[CLEANED] Removed temporary files from system cache</li>
</ul>
<h3>Manual Attention Required</h3>
<ul>
    <li>Update graphics driver manually from manufacturer website</li>
</ul>`)

func TestBuildVerification_CleanRunCompletesTaggedItems(t *testing.T) {
	result := &executor.Result{ExitCode: 0}
	v := BuildVerification(sampleAnalysis, result)

	if len(v.Completed) != 2 {
		t.Fatalf("Completed = %v, want 2 items", v.Completed)
	}
	if len(v.Pending) != 0 {
		t.Errorf("Pending should be empty on clean run, got %v", v.Pending)
	}
	if len(v.Manual) != 1 || !strings.Contains(v.Manual[0], "graphics driver") {
		t.Errorf("Manual = %v, want the driver item", v.Manual)
	}
}

func TestBuildVerification_FailedRunMarksPending(t *testing.T) {
	result := &executor.Result{ExitCode: 1}
	v := BuildVerification(sampleAnalysis, result)

	if len(v.Completed) != 0 {
		t.Errorf("A failed run must not claim success, got %v", v.Completed)
	}
	if len(v.Pending) != 2 {
		t.Errorf("Pending = %v, want both automated items", v.Pending)
	}
}

func TestBuildVerification_DeclinedExecution(t *testing.T) {
	v := BuildVerification(sampleAnalysis, nil)

	if len(v.Completed) != 0 {
		t.Errorf("Nothing completed when execution declined, got %v", v.Completed)
	}
	if len(v.Pending) != 2 {
		t.Errorf("Pending = %v, want both automated items", v.Pending)
	}
}

func TestBuildVerification_EmptyAnalysis(t *testing.T) {
	v := BuildVerification("", nil)
	if len(v.Completed)+len(v.Pending)+len(v.Manual) != 0 {
		t.Errorf("Expected empty verification, got %+v", v)
	}
	if !strings.Contains(v.Render(), "No remediation items") {
		t.Errorf("Render should note the absence of items")
	}
}

func TestWriteHTML_EmbedsSanitizedContent(t *testing.T) {
	dir := t.TempDir()
	snapshot := telemetry.Snapshot{
		"performance": {"CPU Usage": "97%", "Note": "<script>x</script>"},
	}

	analysis := SanitizeModelText(`<h3>Report</h3><script>alert(1)</script>`)
	problem := EscapeUserText(`<b>slow</b> computer`)

	path, err := WriteHTML(dir, "run-1", snapshot, analysis, problem)
	if err != nil {
		t.Fatalf("WriteHTML failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Reading report: %v", err)
	}
	html := string(data)

	if strings.Contains(html, "<script>alert(1)</script>") {
		t.Errorf("Unsanitized model markup reached the report")
	}
	if strings.Contains(html, "<b>slow</b>") {
		t.Errorf("Unescaped user markup reached the report")
	}
	if !strings.Contains(html, "&lt;b&gt;slow&lt;/b&gt;") {
		t.Errorf("Escaped user text missing from report")
	}
	if !strings.Contains(html, "PERFORMANCE") {
		t.Errorf("Telemetry panel missing from report")
	}
	if strings.Contains(html, "<script>x</script>") {
		t.Errorf("Telemetry value embedded without escaping")
	}
	if !strings.Contains(path, "Diagnosis_") {
		t.Errorf("Unexpected report filename: %s", path)
	}
}
