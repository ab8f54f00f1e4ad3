package safety

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Rule names surfaced in violations.
const (
	RuleServiceExistence = "service-existence"
	RuleDestructivePath  = "destructive-path"
	RuleBestEffort       = "best-effort-suppression"
	RuleCritical         = "critical-observable"
	RuleElevationGuard   = "elevation-guard"
)

// Violation is one failed structural check. Violations never halt validation;
// all rules run and every finding is reported so the user sees the full
// picture of why a script was refused.
type Violation struct {
	Rule   string
	Line   string // offending line, trimmed
	Detail string
}

// SafetyReport is the outcome of static validation. A script with
// Passed=false is never eligible for execution.
type SafetyReport struct {
	Passed     bool
	Violations []Violation
}

const errorSuppression = "-erroraction silentlycontinue"

// serviceMutations match commands that stop, disable or restart a named
// service, capturing the service target (a literal name or a $variable).
var serviceMutations = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bStop-Service\s+(?:-Name\s+)?['"]?([\w.$]+)['"]?`),
	regexp.MustCompile(`(?i)\bRestart-Service\s+(?:-Name\s+)?['"]?([\w.$]+)['"]?`),
	regexp.MustCompile(`(?i)\bSet-Service\s+(?:-Name\s+)?['"]?([\w.$]+)['"]?`),
}

// destructiveOps match filesystem operations that can destroy data.
var (
	recursiveDelete = regexp.MustCompile(`(?i)\bRemove-Item\b[^|;]*-Recurse`)
	formatOps       = regexp.MustCompile(`(?i)\b(Format-Volume|Clear-Disk|Initialize-Disk)\b`)
	// Quoted targets may contain spaces; the capture must run to the closing
	// quote, not the next blank.
	deleteTarget = regexp.MustCompile(`(?i)\bRemove-Item\s+(?:-Path\s+)?(?:"([^"]+)"|'([^']+)'|([^'"\s]+))`)
)

// bestEffort commands must carry error suppression so one failure cannot
// abort the remainder of the script.
var bestEffort = regexp.MustCompile(`(?i)\b(Stop-Service|Start-Service|Restart-Service|Set-Service|Clear-DnsClientCache|Remove-Item)\b`)

// critical commands must NOT carry error suppression, their failure has to
// stay observable.
var critical = regexp.MustCompile(`(?i)\bCheckpoint-Computer\b`)

// ephemeralPaths is the allow-list of locations a destructive filesystem
// operation may target. Everything outside it is a violation.
var ephemeralPaths = []string{
	`$env:temp`,
	`c:\windows\temp`,
	`c:\windows\prefetch`,
	`c:\windows\softwaredistribution\download`,
	`c:\windows\logs\cbs`,
}

// Validate runs every structural rule over a sanitized script and returns the
// full ordered violation list. Purely static: the script is never executed.
func Validate(script string) SafetyReport {
	var violations []Violation

	lines := strings.Split(script, "\n")

	violations = append(violations, checkElevationGuard(lines)...)
	violations = append(violations, checkServiceExistence(lines)...)
	violations = append(violations, checkDestructivePaths(lines)...)
	violations = append(violations, checkErrorSuppression(lines)...)

	return SafetyReport{
		Passed:     len(violations) == 0,
		Violations: violations,
	}
}

// checkElevationGuard requires the guard to be present and to be the first
// executable statement.
func checkElevationGuard(lines []string) []Violation {
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if strings.HasPrefix(trimmed, "if (-not ([Security.Principal.WindowsPrincipal]") {
			return nil
		}
		return []Violation{{
			Rule:   RuleElevationGuard,
			Line:   trimmed,
			Detail: "elevation guard must be the first executable statement",
		}}
	}
	return []Violation{{
		Rule:   RuleElevationGuard,
		Detail: "script has no executable statements and no elevation guard",
	}}
}

// checkServiceExistence requires every service mutation to be preceded in
// program order by a Get-Service existence check for the same target. Checks
// and mutations sharing a line are evaluated in positional order, so a
// trailing Get-Service never satisfies an earlier mutation.
func checkServiceExistence(lines []string) []Violation {
	var violations []Violation

	type svcEvent struct {
		pos     int
		isCheck bool
		target  string
	}

	checked := make(map[string]bool)
	getService := regexp.MustCompile(`(?i)\bGet-Service\s+(?:-Name\s+)?['"]?([\w.$]+)['"]?`)

	for _, line := range lines {
		var events []svcEvent

		for _, m := range getService.FindAllStringSubmatchIndex(line, -1) {
			events = append(events, svcEvent{pos: m[0], isCheck: true, target: line[m[2]:m[3]]})
		}
		for _, re := range serviceMutations {
			for _, m := range re.FindAllStringSubmatchIndex(line, -1) {
				events = append(events, svcEvent{pos: m[0], target: line[m[2]:m[3]]})
			}
		}

		sort.Slice(events, func(i, j int) bool { return events[i].pos < events[j].pos })

		for _, ev := range events {
			target := strings.ToLower(ev.target)
			if ev.isCheck {
				checked[target] = true
				continue
			}
			if !checked[target] {
				violations = append(violations, Violation{
					Rule:   RuleServiceExistence,
					Line:   strings.TrimSpace(line),
					Detail: fmt.Sprintf("no preceding existence check for service %q", ev.target),
				})
			}
		}
	}

	return violations
}

// checkDestructivePaths restricts recursive deletes to the ephemeral-path
// allow-list and refuses format/wipe operations outright.
func checkDestructivePaths(lines []string) []Violation {
	var violations []Violation

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if formatOps.MatchString(trimmed) {
			violations = append(violations, Violation{
				Rule:   RuleDestructivePath,
				Line:   trimmed,
				Detail: "volume format/wipe operations are never permitted",
			})
			continue
		}

		if !recursiveDelete.MatchString(trimmed) {
			continue
		}

		target := ""
		if m := deleteTarget.FindStringSubmatch(trimmed); m != nil {
			for _, group := range m[1:] {
				if group != "" {
					target = group
					break
				}
			}
		}

		if !isEphemeralPath(target) {
			violations = append(violations, Violation{
				Rule:   RuleDestructivePath,
				Line:   trimmed,
				Detail: fmt.Sprintf("recursive delete target %q is outside the ephemeral allow-list", target),
			})
		}
	}

	return violations
}

// isEphemeralPath reports whether target is an allow-listed location or lies
// under one. The prefix must end at a path separator so that siblings like
// C:\Windows\Temp2 or $env:TEMPLATE_DIR never match.
func isEphemeralPath(target string) bool {
	normalized := strings.ToLower(strings.ReplaceAll(target, "/", `\`))
	for _, allowed := range ephemeralPaths {
		if normalized == allowed || strings.HasPrefix(normalized, allowed+`\`) {
			return true
		}
	}
	return false
}

// checkErrorSuppression enforces the suppression policy: best-effort commands
// carry -ErrorAction SilentlyContinue, critical commands never do.
func checkErrorSuppression(lines []string) []Violation {
	var violations []Violation

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		lower := strings.ToLower(trimmed)

		if critical.MatchString(trimmed) {
			if strings.Contains(lower, errorSuppression) {
				violations = append(violations, Violation{
					Rule:   RuleCritical,
					Line:   trimmed,
					Detail: "critical operation must not suppress errors; its failure has to be observable",
				})
			}
			continue
		}

		if bestEffort.MatchString(trimmed) && !strings.Contains(lower, errorSuppression) {
			violations = append(violations, Violation{
				Rule:   RuleBestEffort,
				Line:   trimmed,
				Detail: "best-effort operation must carry -ErrorAction SilentlyContinue",
			})
		}
	}

	return violations
}
