package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/Guettaf-hossam/SuperDiagnosticTool/internal/config"
	"github.com/Guettaf-hossam/SuperDiagnosticTool/internal/diagnose"
	"github.com/Guettaf-hossam/SuperDiagnosticTool/internal/executor"
	"github.com/Guettaf-hossam/SuperDiagnosticTool/internal/llm"
	"github.com/Guettaf-hossam/SuperDiagnosticTool/internal/logger"
	"github.com/Guettaf-hossam/SuperDiagnosticTool/internal/telemetry"
	"github.com/Guettaf-hossam/SuperDiagnosticTool/internal/ui"
)

func main() {
	apiKeyFlag := flag.String("api-key", "", "Gemini API key (overrides env and key file)")
	resetKey := flag.Bool("reset-key", false, "forget the persisted API key and prompt again")
	flag.Parse()

	if err := logger.Init("superdiag.log"); err != nil {
		fmt.Printf("Error initializing logger: %v\n", err)
	}
	defer logger.Close()

	logger.Info("Starting SuperDiagnosticTool...")

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config: %v", err)
		log.Fatalf("Failed to load config: %v", err)
	}

	if *resetKey {
		if err := config.ResetAPIKey(cfg.DataDirectory()); err != nil {
			log.Fatalf("Failed to reset API key: %v", err)
		}
		fmt.Println("API key reset.")
	}

	apiKey, err := config.ResolveAPIKey(cfg.DataDirectory(), *apiKeyFlag, promptForKey)
	if err != nil {
		logger.Error("API key resolution failed: %v", err)
		log.Fatalf("No usable API key: %v", err)
	}

	client := llm.NewGeminiClient(apiKey)
	client.Model = cfg.Model
	client.BaseURL = cfg.APIBaseURL
	client.Timeout = time.Duration(cfg.RequestTimeout) * time.Second

	pipeline := &diagnose.Pipeline{Model: client}

	m := ui.NewModel(ui.Deps{
		Collector: telemetry.NewCollector(),
		Pipeline:  pipeline,
		Exec:      executor.NewController(cfg.ReportDir),
		ReportDir: cfg.ReportDir,
		RunID:     uuid.NewString(),
	})

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

// promptForKey reads a key from stdin. Input stays visible so Ctrl+V pasting
// works in plain terminals.
func promptForKey() (string, error) {
	fmt.Println("Enter Google Gemini API key:")
	fmt.Print("> ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
