package report

import (
	"strings"
	"testing"
)

func TestSanitizeModelText_StripsScriptElement(t *testing.T) {
	in := `<h3>Report</h3><script>alert(1)</script><p>done</p>`
	out := string(SanitizeModelText(in))

	if strings.Contains(out, "<script") || strings.Contains(out, "alert(1)") {
		t.Errorf("Script element survived: %q", out)
	}
	if !strings.Contains(out, "<h3>Report</h3>") || !strings.Contains(out, "<p>done</p>") {
		t.Errorf("Benign markup must be preserved: %q", out)
	}
}

func TestSanitizeModelText_StripsStyleAndStrayTags(t *testing.T) {
	in := `<style>body{display:none}</style><p>ok</p></script>`
	out := string(SanitizeModelText(in))

	if strings.Contains(out, "style") || strings.Contains(out, "</script>") {
		t.Errorf("Style or stray tag survived: %q", out)
	}
}

func TestSanitizeModelText_StripsEventHandlers(t *testing.T) {
	cases := []string{
		`<p onclick="steal()">hi</p>`,
		`<img src=x onerror="alert(1)">`,
		`<div ONLOAD='x()'>y</div>`,
	}
	for _, in := range cases {
		out := strings.ToLower(string(SanitizeModelText(in)))
		if strings.Contains(out, "onclick") || strings.Contains(out, "onerror") || strings.Contains(out, "onload") {
			t.Errorf("Event handler survived in %q -> %q", in, out)
		}
	}
}

func TestSanitizeModelText_CaseInsensitive(t *testing.T) {
	out := string(SanitizeModelText(`<SCRIPT>alert(1)</SCRIPT>`))
	if strings.Contains(strings.ToLower(out), "script") {
		t.Errorf("Uppercase script element survived: %q", out)
	}
}

func TestEscapeUserText_NeutralizesMarkup(t *testing.T) {
	out := string(EscapeUserText(`<script>alert(1)</script>`))

	if strings.Contains(out, "<script>") {
		t.Errorf("Live markup in escaped user text: %q", out)
	}
	if !strings.Contains(out, "&lt;script&gt;") {
		t.Errorf("Expected escaped entities, got %q", out)
	}
}

func TestEscapeUserText_PlainTextUnchanged(t *testing.T) {
	if out := string(EscapeUserText("my computer is slow")); out != "my computer is slow" {
		t.Errorf("Plain text should pass through, got %q", out)
	}
}
