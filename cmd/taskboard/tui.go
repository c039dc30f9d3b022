package main

import (
	"fmt"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nhle/taskboard/internal/app"
	"github.com/nhle/taskboard/internal/client"
	"github.com/nhle/taskboard/internal/logging"
	"github.com/nhle/taskboard/internal/model"
)

var tuiServer string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the terminal board client",
	Long: `Open the terminal board client against a running server.

Edits show immediately and are undone if the server rejects them.
Logs are written to a file so they do not corrupt the screen.

Examples:
  taskboard tui
  taskboard tui --server http://boards.internal:3000`,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().StringVar(&tuiServer, "server", "", "server base URL (overrides client.base_url)")
}

func runTUI(cmd *cobra.Command, args []string) error {
	logCfg := cfg.Log
	if logCfg.File == "" {
		logCfg.File = filepath.Join(filepath.Dir(model.DefaultConfigPath()), "tui.log")
	}
	log, closer, err := logging.New(logCfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	baseURL := cfg.Client.BaseURL
	if tuiServer != "" {
		baseURL = tuiServer
	}
	c := client.New(baseURL, time.Duration(cfg.Client.TimeoutSec)*time.Second)

	p := tea.NewProgram(app.New(c, log), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running terminal client: %w", err)
	}
	return nil
}
