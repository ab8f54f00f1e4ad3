package report

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Guettaf-hossam/SuperDiagnosticTool/internal/executor"
)

// actionTag matches the past-tense action tags the analysis contract asks the
// model to use for automated items.
var actionTag = regexp.MustCompile(`\[(FIXED|CLEANED|DISABLED)\]\s*([^<\n]+)`)

// listItem matches manual-attention entries, which carry no action tag.
var listItem = regexp.MustCompile(`<li>\s*([^<]+?)\s*</li>`)

// Verification is the post-execution remediation status: which automated
// actions can be considered done and which items still need a human.
type Verification struct {
	Completed []string // automated actions, confirmed by a clean run
	Pending   []string // automated actions whose run failed or never happened
	Manual    []string // items the analysis flagged for user intervention
}

// BuildVerification derives remediation status from the sanitized analysis
// and the execution result. result is nil when the user declined execution or
// none was offered; a nonzero exit marks every automated item pending rather
// than claiming success.
func BuildVerification(analysis Fragment, result *executor.Result) Verification {
	var v Verification

	text := string(analysis)
	tagged := make(map[string]bool)

	executed := result != nil && result.ExitCode == 0

	for _, m := range actionTag.FindAllStringSubmatch(text, -1) {
		item := fmt.Sprintf("[%s] %s", m[1], strings.TrimSpace(m[2]))
		tagged[strings.TrimSpace(m[2])] = true
		if executed {
			v.Completed = append(v.Completed, item)
		} else {
			v.Pending = append(v.Pending, item)
		}
	}

	for _, m := range listItem.FindAllStringSubmatch(text, -1) {
		item := strings.TrimSpace(m[1])
		if strings.HasPrefix(item, "[") || tagged[trimTag(item)] {
			continue
		}
		v.Manual = append(v.Manual, item)
	}

	return v
}

func trimTag(item string) string {
	if idx := strings.Index(item, "]"); idx >= 0 {
		return strings.TrimSpace(item[idx+1:])
	}
	return item
}

var (
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#3fb950"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500"))
	manualStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#58a6ff"))
	headStyle    = lipgloss.NewStyle().Bold(true)
)

// Render formats the verification for terminal display.
func (v Verification) Render() string {
	var sb strings.Builder

	if len(v.Completed) > 0 {
		sb.WriteString(headStyle.Render("Completed") + "\n")
		for _, item := range v.Completed {
			sb.WriteString(doneStyle.Render("  ✔ "+item) + "\n")
		}
	}
	if len(v.Pending) > 0 {
		sb.WriteString(headStyle.Render("Requires manual attention (run failed or skipped)") + "\n")
		for _, item := range v.Pending {
			sb.WriteString(pendingStyle.Render("  ✘ "+item) + "\n")
		}
	}
	if len(v.Manual) > 0 {
		sb.WriteString(headStyle.Render("Manual follow-ups") + "\n")
		for _, item := range v.Manual {
			sb.WriteString(manualStyle.Render("  • "+item) + "\n")
		}
	}

	if sb.Len() == 0 {
		return "No remediation items reported."
	}
	return strings.TrimRight(sb.String(), "\n")
}
