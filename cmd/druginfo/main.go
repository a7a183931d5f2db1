// Command druginfo is the terminal client. Without flags it starts the
// interactive UI; with -q or -image it prints one document and exits.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/giygas/druginfo/backend"
	"github.com/giygas/druginfo/config"
	"github.com/giygas/druginfo/entities"
	"github.com/giygas/druginfo/interfaces"
	"github.com/giygas/druginfo/logging"
	"github.com/giygas/druginfo/render"
	"github.com/giygas/druginfo/session"
	"github.com/giygas/druginfo/tui"
	"github.com/giygas/druginfo/validation"
)

type options struct {
	drugName string
	image    string
	output   string
	width    int
}

func main() {
	var opts options
	flag.StringVar(&opts.drugName, "q", "", "drug name to look up")
	flag.StringVar(&opts.image, "image", "", "medicine photo to identify")
	flag.StringVar(&opts.output, "o", render.FormatText, "output format: text, json or yaml")
	flag.IntVar(&opts.width, "width", 80, "wrap width for text output")
	flag.Parse()

	if err := config.LoadEnvFile(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// The terminal belongs to the UI, so logs only go to files
	if err := logging.InitFileLogger(cfg.LogDir, cfg.LogLevel, cfg.LogRetentionWeeks, cfg.MaxLogFileSize); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logging.Close() }()

	client := backend.NewClient(cfg.BackendURL, cfg.BackendTimeout)
	validator := validation.NewQueryValidator(cfg.MaxUploadSize)

	if opts.drugName == "" && opts.image == "" {
		p := tea.NewProgram(tui.NewModel(client, validator, cfg.BackendTimeout), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
			os.Exit(1)
		}
		return
	}

	os.Exit(runOnce(context.Background(), client, validator, opts, os.Stdout, os.Stderr))
}

// runOnce performs a single search and returns the process exit code
func runOnce(ctx context.Context, b interfaces.Backend, validator interfaces.QueryValidator, opts options, stdout, stderr io.Writer) int {
	q, err := buildQuery(opts)
	if err == nil {
		err = validator.ValidateQuery(q)
	}
	if err != nil {
		fmt.Fprintln(stderr, render.NewRenderer(opts.width).RenderError(err.Error()))
		return 2
	}

	s := session.New(nil)
	st := s.Search(ctx, b, q)
	if st.Phase != session.Succeeded {
		fmt.Fprintln(stderr, render.NewRenderer(opts.width).RenderError(st.Error))
		return 1
	}

	if err := render.WriteDocument(stdout, s.Document(), opts.output, opts.width); err != nil {
		fmt.Fprintf(stderr, "Failed to write output: %v\n", err)
		return 1
	}
	return 0
}

// buildQuery prefers the image when both flags are given
func buildQuery(opts options) (entities.Query, error) {
	if opts.image == "" {
		return entities.Query{DrugName: opts.drugName}, nil
	}

	data, err := os.ReadFile(opts.image)
	if err != nil {
		return entities.Query{}, fmt.Errorf("could not read image %s: %w", opts.image, err)
	}
	return entities.Query{Image: &entities.ImageUpload{Filename: filepath.Base(opts.image), Data: data}}, nil
}
