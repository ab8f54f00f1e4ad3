package safety

import (
	"fmt"
	"regexp"
	"strings"
)

// ElevationGuard is the privilege-check preamble every remediation script must
// start with. It aborts before any mutation when the process is not elevated.
const ElevationGuard = `# Admin privilege check
if (-not ([Security.Principal.WindowsPrincipal][Security.Principal.WindowsIdentity]::GetCurrent()).IsInRole([Security.Principal.WindowsBuiltInRole]::Administrator)) {
    Write-Host "ERROR: This script requires Administrator privileges" -ForegroundColor Red
    exit 1
}`

// guardMarker identifies an already-present elevation guard.
const guardMarker = "[Security.Principal.WindowsBuiltInRole]::Administrator"

// escapeRule is one entry in the variable-escaping table: a hazard pattern, a
// replacement template, and variable names exempt from rewriting. Kept as an
// explicit table so new hazard patterns are added here, not in control flow.
type escapeRule struct {
	pattern     *regexp.Regexp
	replacement string // %s is the variable name
	exceptions  map[string]bool
}

// escapeRules covers the known PowerShell syntax hazard: a bare variable
// reference immediately followed by a colon ("$path:") parses as a scope or
// drive qualifier and corrupts the command. Rewriting to "$($path):" makes the
// reference explicit. The $env provider prefix is the recognized
// environment-variable form ("$env:TEMP") and must stay untouched so those
// references keep resolving.
var escapeRules = []escapeRule{
	{
		pattern:     regexp.MustCompile(`\$(\w+):`),
		replacement: "$($%s):",
		exceptions:  map[string]bool{"env": true},
	},
}

// Sanitize rewrites ambiguous variable references and guarantees the
// elevation guard is present. Pure text transform, deterministic and
// idempotent: sanitizing an already-sanitized script is a no-op.
func Sanitize(rawScript string) string {
	script := strings.TrimSpace(rawScript)
	if script == "" {
		return ""
	}

	for _, rule := range escapeRules {
		script = rule.pattern.ReplaceAllStringFunc(script, func(match string) string {
			name := rule.pattern.FindStringSubmatch(match)[1]
			if rule.exceptions[strings.ToLower(name)] {
				return match
			}
			return fmt.Sprintf(rule.replacement, name)
		})
	}

	if !strings.Contains(script, guardMarker) {
		script = ElevationGuard + "\n\n" + script
	}

	return script
}
