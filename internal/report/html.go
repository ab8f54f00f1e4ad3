package report

import (
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Guettaf-hossam/SuperDiagnosticTool/internal/telemetry"
)

const reportTemplate = `<!DOCTYPE html>
<html>
<head>
    <title>AI Diagnostic Core | {{.Timestamp}}</title>
    <style>
    :root { --bg: #0d1117; --card: #161b22; --text: #c9d1d9; --accent: #58a6ff; --danger: #f85149; --success: #3fb950; }
    body { font-family: 'Segoe UI', system-ui, sans-serif; background: var(--bg); color: var(--text); margin: 0; padding: 20px; }
    .container { max-width: 1200px; margin: 0 auto; }
    h1 { border-bottom: 2px solid var(--accent); padding-bottom: 10px; color: var(--accent); text-transform: uppercase; letter-spacing: 2px; }
    .problem-box { background: rgba(248, 81, 73, 0.1); border-left: 5px solid var(--danger); padding: 20px; margin-bottom: 30px; }
    .ai-analysis { background: linear-gradient(145deg, #1f2428, #161b22); padding: 30px; border-radius: 12px; border: 1px solid var(--accent); margin-bottom: 30px; }
    .raw-data { display: grid; grid-template-columns: repeat(auto-fit, minmax(400px, 1fr)); gap: 20px; }
    .data-panel { background: var(--card); padding: 20px; border-radius: 8px; border: 1px solid #30363d; height: 300px; overflow-y: auto; }
    .data-panel h4 { color: var(--success); border-bottom: 1px solid #30363d; padding-bottom: 10px; margin-top: 0; }
    pre { white-space: pre-wrap; font-family: 'Consolas', monospace; font-size: 0.85rem; color: #8b949e; }
    </style>
</head>
<body>
    <div class="container">
        <h1>System Diagnostic Core <span style="font-size:0.5em; float:right; color:var(--text)">{{.Timestamp}}</span></h1>

        <div class="problem-box">
            <h3 style="margin-top:0; color:var(--danger)">REPORTED ISSUE</h3>
            <p>"{{.UserProblem}}"</p>
        </div>

        <div class="ai-analysis">
            <h2>Intelligent Analysis &amp; Fixes</h2>
            <div style="line-height: 1.6; font-size: 1.1rem;">{{.Analysis}}</div>
        </div>

        <div class="raw-data">
        {{range .Panels}}
            <div class="data-panel">
                <h4>{{.Title}}</h4>
                <pre>{{.Body}}</pre>
            </div>
        {{end}}
        </div>

        <div style="text-align:center; margin-top:50px; color:#555; font-size:0.8rem;">
            GENERATED BY SUPER DIAGNOSTIC TOOL<br>Run {{.RunID}}
        </div>
    </div>
</body>
</html>
`

var reportTmpl = template.Must(template.New("report").Parse(reportTemplate))

type panel struct {
	Title string
	Body  string // rendered through {{...}} so it is escaped by the template
}

type reportData struct {
	Timestamp string
	RunID     string

	// Both fields are pre-sanitized Fragments; template.HTML stops the
	// engine from escaping them a second time.
	UserProblem template.HTML
	Analysis    template.HTML

	Panels []panel
}

// WriteHTML renders the diagnostic report to <dir>/Diagnosis_<ts>.html and
// returns its path. The analysis fragment must come from SanitizeModelText
// and the user problem from EscapeUserText; telemetry values are escaped by
// the template engine.
func WriteHTML(dir, runID string, snapshot telemetry.Snapshot, analysis Fragment, userProblem Fragment) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating report dir: %w", err)
	}

	now := time.Now()
	data := reportData{
		Timestamp:   now.Format("2006-01-02 15:04"),
		RunID:       runID,
		UserProblem: template.HTML(userProblem),
		Analysis:    template.HTML(analysis),
	}

	for _, name := range snapshot.Categories() {
		body, err := json.MarshalIndent(snapshot[name], "", "  ")
		if err != nil {
			body = []byte("unavailable")
		}
		data.Panels = append(data.Panels, panel{
			Title: strings.ToUpper(name),
			Body:  string(body),
		})
	}

	path := filepath.Join(dir, fmt.Sprintf("Diagnosis_%s.html", now.Format("20060102_150405")))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating report file: %w", err)
	}
	defer f.Close()

	if err := reportTmpl.Execute(f, data); err != nil {
		return "", fmt.Errorf("rendering report: %w", err)
	}
	return path, nil
}
