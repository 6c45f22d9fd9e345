package internal

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// UIManager handles all user interface concerns (progress, verbose output, status)
type UIManager interface {
	// Progress bars
	NewProgressBar(total int64, description string) ProgressBar
	NewSpinner(description string) ProgressBar

	// Verbose output
	Verbose(format string, args ...any)

	// Status messages
	Printf(format string, args ...any)
	Warnf(format string, args ...any)
}

// ProgressBar abstracts progress bar operations.
// Bytes written to it advance byte-sized bars.
type ProgressBar interface {
	io.Writer
	Finish()
}

// StandardUIManager writes status output to stderr so stdout carries only transcripts
type StandardUIManager struct {
	out         io.Writer
	verbose     bool
	quiet       bool
	interactive bool
}

// NewUIManager creates a UI manager writing to stderr
func NewUIManager(verbose, quiet bool) UIManager {
	return NewUIManagerWithWriter(os.Stderr, verbose, quiet, stderrIsTerminal())
}

// NewUIManagerWithWriter creates a UI manager writing to out.
// Progress bars are only drawn when interactive is true.
func NewUIManagerWithWriter(out io.Writer, verbose, quiet, interactive bool) UIManager {
	return &StandardUIManager{
		out:         out,
		verbose:     verbose && !quiet,
		quiet:       quiet,
		interactive: interactive,
	}
}

func stderrIsTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Progress Bar Methods
func (ui *StandardUIManager) NewProgressBar(total int64, description string) ProgressBar {
	if ui.quiet || !ui.interactive {
		return &SilentProgressBar{bar: progressbar.DefaultSilent(total)}
	}

	bar := progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(ui.out),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowBytes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
	return &VisibleProgressBar{bar: bar}
}

func (ui *StandardUIManager) NewSpinner(description string) ProgressBar {
	if ui.quiet || !ui.interactive {
		return &SilentProgressBar{bar: progressbar.DefaultSilent(-1)}
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(ui.out),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	s := &Spinner{bar: bar, done: make(chan struct{})}
	go s.spin(100 * time.Millisecond)
	return s
}

// Verbose Output Methods
func (ui *StandardUIManager) Verbose(format string, args ...any) {
	if ui.verbose {
		fmt.Fprintf(ui.out, format, args...)
	}
}

// Status Message Methods
func (ui *StandardUIManager) Printf(format string, args ...any) {
	if !ui.quiet {
		fmt.Fprintf(ui.out, format, args...)
	}
}

// Warnf is shown even in quiet mode
func (ui *StandardUIManager) Warnf(format string, args ...any) {
	fmt.Fprintf(ui.out, "Warning: "+format, args...)
}

// VisibleProgressBar wraps the actual progress bar
type VisibleProgressBar struct {
	bar *progressbar.ProgressBar
}

func (v *VisibleProgressBar) Write(p []byte) (int, error) {
	return v.bar.Write(p)
}

func (v *VisibleProgressBar) Finish() {
	_ = v.bar.Finish()
}

// SilentProgressBar implements a silent progress bar
type SilentProgressBar struct {
	bar *progressbar.ProgressBar
}

func (s *SilentProgressBar) Write(p []byte) (int, error) {
	return len(p), nil
}

func (s *SilentProgressBar) Finish() {
	_ = s.bar.Finish()
}

// Spinner animates an indeterminate bar until Finish is called
type Spinner struct {
	bar  *progressbar.ProgressBar
	done chan struct{}
	once sync.Once
}

func (s *Spinner) spin(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			_ = s.bar.Add(1)
		}
	}
}

func (s *Spinner) Write(p []byte) (int, error) {
	return len(p), nil
}

func (s *Spinner) Finish() {
	s.once.Do(func() {
		close(s.done)
		_ = s.bar.Finish()
	})
}
