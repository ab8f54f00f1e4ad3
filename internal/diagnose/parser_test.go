package diagnose

import "testing"

func wrap(analysis, fix string) string {
	return "noise before\n" + AnalysisStart + analysis + AnalysisEnd +
		"\nnoise between\n" + FixStart + fix + FixEnd + "\ntrailing noise"
}

func TestParse_RoundTrip(t *testing.T) {
	d := Parse(wrap("\n<h3>Report</h3>\n", "\nWrite-Host 'hi'\n"))

	if !d.WellFormed {
		t.Fatalf("Expected WellFormed=true, got false")
	}
	if d.AnalysisText != "<h3>Report</h3>" {
		t.Errorf("Analysis mismatch: %q", d.AnalysisText)
	}
	if d.RawScript != "Write-Host 'hi'" {
		t.Errorf("Script mismatch: %q", d.RawScript)
	}
}

func TestParse_NoSentinels(t *testing.T) {
	d := Parse("the model rambled with no structure at all")

	if d.WellFormed {
		t.Errorf("Expected WellFormed=false")
	}
	if d.AnalysisText != "" || d.RawScript != "" {
		t.Errorf("Expected empty sections, got %q / %q", d.AnalysisText, d.RawScript)
	}
}

func TestParse_EmptyResponse(t *testing.T) {
	d := Parse("")
	if d.WellFormed || d.AnalysisText != "" || d.RawScript != "" {
		t.Errorf("Expected fully empty diagnosis, got %+v", d)
	}
}

func TestParse_AnalysisOnly(t *testing.T) {
	d := Parse(AnalysisStart + "diagnosis text" + AnalysisEnd + " no fix section")

	if d.WellFormed {
		t.Errorf("Expected WellFormed=false with missing fix pair")
	}
	if d.AnalysisText != "diagnosis text" {
		t.Errorf("Analysis should still be populated, got %q", d.AnalysisText)
	}
	if d.RawScript != "" {
		t.Errorf("Expected empty script, got %q", d.RawScript)
	}
}

func TestParse_TruncatedAnalysis(t *testing.T) {
	d := Parse(AnalysisStart + "cut off mid-sentence")

	if d.WellFormed {
		t.Errorf("Expected WellFormed=false for truncated response")
	}
	if d.AnalysisText != "cut off mid-sentence" {
		t.Errorf("Expected truncated text preserved, got %q", d.AnalysisText)
	}
}

func TestParse_EmptyBodies(t *testing.T) {
	d := Parse(wrap("", ""))

	if !d.WellFormed {
		t.Errorf("Empty bodies are data, not an error; expected WellFormed=true")
	}
	if d.AnalysisText != "" || d.RawScript != "" {
		t.Errorf("Expected empty sections, got %q / %q", d.AnalysisText, d.RawScript)
	}
}

func TestParse_DuplicateSentinels_FirstWins(t *testing.T) {
	response := AnalysisStart + "real analysis" + AnalysisEnd +
		AnalysisStart + "injected duplicate" + AnalysisEnd +
		FixStart + "real script" + FixEnd +
		FixStart + "injected script" + FixEnd

	d := Parse(response)

	if !d.WellFormed {
		t.Fatalf("Expected WellFormed=true")
	}
	if d.AnalysisText != "real analysis" {
		t.Errorf("First analysis region should win, got %q", d.AnalysisText)
	}
	if d.RawScript != "real script" {
		t.Errorf("First fix region should win, got %q", d.RawScript)
	}
}

func TestParse_FixBeforeAnalysisIsIgnored(t *testing.T) {
	// The layout contract is analysis first; a fix region with no preceding
	// analysis region is never entered.
	d := Parse(FixStart + "orphan script" + FixEnd)

	if d.WellFormed || d.RawScript != "" {
		t.Errorf("Expected no script from out-of-order response, got %+v", d)
	}
}

func TestParse_StripsCodeFences(t *testing.T) {
	d := Parse(wrap("a", "\n```powershell\nWrite-Host 'x'\n```\n"))

	if d.RawScript != "Write-Host 'x'" {
		t.Errorf("Expected fences stripped, got %q", d.RawScript)
	}
}
