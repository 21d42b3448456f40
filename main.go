package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	humanize "github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/mobanhawi/duscan/internal/scanner"
	"github.com/mobanhawi/duscan/internal/ui"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		plain   bool
		workers int
		top     int
	)

	root := &cobra.Command{
		Use:     "duscan [path]",
		Short:   "Fast parallel disk usage analyzer",
		Long:    "duscan scans a directory tree and shows where the bytes went.\nWithout a path it offers a picker of mounted volumes.",
		Version: version + " (" + commit + ")",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				abs, err := filepath.Abs(args[0])
				if err != nil {
					return fmt.Errorf("resolving path: %w", err)
				}
				if _, err := os.Stat(abs); err != nil {
					return err
				}
				path = abs
			}

			if plain {
				if path == "" {
					return fmt.Errorf("--plain requires a path argument")
				}
				return runPlain(path, workers, top)
			}

			p := tea.NewProgram(ui.New(path, workers), tea.WithAltScreen())
			_, err := p.Run()
			return err
		},
	}

	root.Flags().BoolVar(&plain, "plain", false, "print a summary instead of the interactive UI")
	root.Flags().IntVar(&workers, "workers", 0, "concurrent directory reads (0 = logical CPU count)")
	root.Flags().IntVar(&top, "top", 20, "entries to list in --plain output")
	root.SilenceUsage = true

	if err := root.Execute(); err != nil {
		return 1
	}
	return 0
}

// runPlain scans without the UI, describing live progress on a spinner and
// printing the largest top-level entries afterwards.
func runPlain(path string, workers, top int) error {
	prog := scanner.NewProgress()

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionClearOnFinish(),
	)

	done := make(chan *scanner.Node, 1)
	go func() {
		done <- scanner.New(workers).Scan(context.Background(), path, prog)
	}()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	var node *scanner.Node
	for node == nil {
		select {
		case node = <-done:
		case <-ticker.C:
			bar.Describe(fmt.Sprintf("%s files, %s dirs, %s errors — %s",
				humanize.Comma(int64(prog.FilesScanned())),
				humanize.Comma(int64(prog.DirsScanned())),
				humanize.Comma(int64(prog.Errors())),
				prog.CurrentPath()))
		}
	}
	_ = bar.Finish()

	fmt.Printf("%s\t%s\n", humanize.IBytes(uint64(node.Size)), node.Name)
	for i, child := range node.Children {
		if i >= top {
			fmt.Printf("  … %d more\n", len(node.Children)-top)
			break
		}
		pct := 0.0
		if node.Size > 0 {
			pct = float64(child.Size) / float64(node.Size) * 100
		}
		marker := " "
		if child.IsDir {
			marker = "/"
		}
		fmt.Printf("  %8s  %5.1f%%  %s%s\n", humanize.IBytes(uint64(child.Size)), pct, child.Name, marker)
	}
	if errs := prog.Errors(); errs > 0 {
		fmt.Fprintf(os.Stderr, "warning: %d entries skipped\n", errs)
	}
	return nil
}
