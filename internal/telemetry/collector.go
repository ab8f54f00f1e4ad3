package telemetry

import (
	"bytes"
	"context"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/Guettaf-hossam/SuperDiagnosticTool/internal/logger"
)

// ScanDepth selects which categories a run collects.
type ScanDepth int

const (
	QuickScan    ScanDepth = iota // system + performance only
	DeepScan                      // + network, security, events, bluetooth
	CompleteScan                  // + disk, gpu, startup
)

// CategoriesFor returns the category set for a scan depth, in collection order.
func CategoriesFor(depth ScanDepth) []string {
	quick := []string{"system", "performance"}
	deep := append(quick, "network", "security", "events", "bluetooth", "processes")
	complete := append(deep, "disk", "gpu", "startup")

	switch depth {
	case QuickScan:
		return quick
	case DeepScan:
		return deep
	default:
		return complete
	}
}

// RunShellFunc executes a single PowerShell command and returns its trimmed
// stdout. Injectable so tests never touch a live shell.
type RunShellFunc func(ctx context.Context, command string) string

// Collector gathers system facts into a Snapshot. Each category scanner is a
// set of PowerShell queries; a failing query degrades to "N/A" and never
// aborts the scan.
type Collector struct {
	Run     RunShellFunc
	Timeout time.Duration
}

func NewCollector() *Collector {
	return &Collector{
		Run:     runPowerShell,
		Timeout: 30 * time.Second,
	}
}

// categoryQueries maps each category to its named PowerShell probes.
var categoryQueries = map[string]map[string]string{
	"system": {
		"OS":        "(Get-CimInstance Win32_OperatingSystem).Caption + ' ' + (Get-CimInstance Win32_OperatingSystem).Version",
		"Boot Time": "(Get-CimInstance Win32_OperatingSystem).LastBootUpTime",
		"CPU Model": "(Get-CimInstance Win32_Processor).Name",
		"Cores":     "(Get-CimInstance Win32_Processor | Measure-Object -Property NumberOfCores -Sum).Sum",
		"Battery":   "Get-CimInstance -ClassName Win32_Battery | Select-Object -Property EstimatedChargeRemaining, BatteryStatus | Out-String",
	},
	"performance": {
		"CPU Usage":      "(Get-CimInstance Win32_Processor | Measure-Object -Property LoadPercentage -Average).Average",
		"Total RAM (GB)": "[math]::Round((Get-CimInstance Win32_ComputerSystem).TotalPhysicalMemory / 1GB, 1)",
		"Free RAM (GB)":  "[math]::Round((Get-CimInstance Win32_OperatingSystem).FreePhysicalMemory / 1MB, 1)",
		"Top RAM Consumers": "Get-Process | Sort-Object WorkingSet -Descending | Select-Object -First 5 Name, " +
			"@{N='MemMB';E={[math]::Round($_.WorkingSet / 1MB, 1)}} | Out-String",
		"Top CPU Consumers": "Get-Process | Sort-Object CPU -Descending | Select-Object -First 5 Name, CPU | Out-String",
	},
	"network": {
		"Active Interfaces":  "Get-NetAdapter | Where-Object Status -eq 'Up' | Select-Object Name, InterfaceDescription, LinkSpeed | Out-String",
		"DNS Config":         "Get-DnsClientServerAddress | Where-Object ServerAddresses -ne $null | Select-Object InterfaceAlias, ServerAddresses | Out-String",
		"Wi-Fi Signal":       "netsh wlan show interfaces | Select-String 'Signal' | Out-String",
		"Ping Test (Google)": "Test-Connection -ComputerName 8.8.8.8 -Count 1 -Quiet",
	},
	"security": {
		"Antivirus":         "Get-MpComputerStatus | Select-Object AntivirusEnabled, RealTimeProtectionEnabled, DefenderSignaturesOutOfDate | Out-String",
		"Firewall Profiles": "Get-NetFirewallProfile | Select-Object Name, Enabled | Out-String",
		"Last Updates":      "Get-HotFix | Sort-Object InstalledOn -Descending | Select-Object -First 5 HotFixID, InstalledOn | Out-String",
	},
	"events": {
		"Critical Events": "Get-WinEvent -FilterHashtable @{LogName='System';Level=1,2;StartTime=(Get-Date).AddHours(-24)} " +
			"-MaxEvents 15 -ErrorAction SilentlyContinue | Select-Object TimeCreated, Message | Out-String",
	},
	"bluetooth": {
		"Devices":     "Get-PnpDevice -Class Bluetooth | Select-Object FriendlyName, Status, Class | Sort-Object Status | Out-String",
		"Radio State": "Get-NetAdapter | Where-Object InterfaceDescription -like '*Bluetooth*' | Select-Object Name, Status | Out-String",
	},
	// The process audit feeds the model's anomaly review: skip known-good
	// binaries, then flag anything resource-heavy or running out of a user
	// profile path, worst CPU offenders first.
	"processes": {
		"Suspicious Audit": "$whitelist = @('superdiag.exe', 'powershell.exe', 'python.exe', 'git.exe', 'ssh-agent.exe'); " +
			"Get-Process | Where-Object { $whitelist -notcontains ($_.ProcessName + '.exe') -and " +
			"(($_.CPU -gt 1) -or ($_.WorkingSet -gt 100MB) -or " +
			"($_.Path -like '*\\Users\\*' -and $_.Path -notlike '*\\Windows\\*')) } | " +
			"Sort-Object CPU -Descending | Select-Object -First 30 ProcessName, Id, Path, " +
			"@{N='MemMB';E={[math]::Round($_.WorkingSet / 1MB, 1)}}, CPU | Out-String",
	},
	"disk": {
		"Physical Drives (SMART)": "Get-PhysicalDisk | Select-Object FriendlyName, MediaType, HealthStatus, OperationalStatus, Size | Out-String",
		"Partitions":              "Get-Volume | Where-Object DriveLetter -ne $null | Select-Object DriveLetter, FileSystemLabel, SizeRemaining, Size | Out-String",
	},
	"gpu": {
		"Controllers": "Get-CimInstance Win32_VideoController | Select-Object Name, DriverVersion, VideoProcessor, AdapterRAM | Out-String",
	},
	"startup": {
		"Startup Apps":    "Get-CimInstance Win32_StartupCommand | Select-Object Name, Command, Location, User | Out-String",
		"Failed Services": "Get-Service | Where-Object {$_.Status -eq 'Stopped' -and $_.StartType -eq 'Automatic'} | Select-Object Name, DisplayName | Out-String",
	},
}

// Collect scans every category for the given depth concurrently and returns
// the aggregated snapshot. The caller only ever sees the final aggregate,
// never partial data.
func (c *Collector) Collect(ctx context.Context, depth ScanDepth, onCategory func(name string)) Snapshot {
	categories := CategoriesFor(depth)

	snapshot := make(Snapshot, len(categories))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, name := range categories {
		queries, ok := categoryQueries[name]
		if !ok {
			continue
		}

		wg.Add(1)
		go func(name string, queries map[string]string) {
			defer wg.Done()

			fields := make(map[string]any, len(queries))
			for field, query := range queries {
				fields[field] = c.probe(ctx, query)
			}

			mu.Lock()
			snapshot[name] = fields
			mu.Unlock()

			if onCategory != nil {
				onCategory(name)
			}
		}(name, queries)
	}

	wg.Wait()
	return snapshot
}

// probe runs a single query, degrading to "N/A" on any failure.
func (c *Collector) probe(ctx context.Context, query string) string {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	out := strings.TrimSpace(c.Run(ctx, query))
	if out == "" {
		return "N/A"
	}
	return out
}

// runPowerShell is the default RunShellFunc. Any error yields an empty string
// so the caller records "N/A" instead of failing the category.
func runPowerShell(ctx context.Context, command string) string {
	shell := "powershell"
	if runtime.GOOS != "windows" {
		// Non-Windows hosts only show up in development; pwsh keeps the
		// probes runnable there when it is installed.
		shell = "pwsh"
	}

	cmd := exec.CommandContext(ctx, shell, "-NoProfile", "-NonInteractive", "-Command", command)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		logger.Debug("telemetry probe failed: %v", err)
		return ""
	}
	return stdout.String()
}
