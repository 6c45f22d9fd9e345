package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// Transcriber sends a request to the transcription service
type Transcriber interface {
	Transcribe(ctx context.Context, req TranscriptionRequest) (string, error)
}

// App holds the application state and dependencies
type App struct {
	transcriber Transcriber
	config      *Config
	ui          UIManager
	activity    *ActivityLog
	stdout      io.Writer
	now         func() time.Time
}

// NewApp initializes the application
func NewApp(config *Config, options ...AppOption) *App {
	app := &App{
		config:   config,
		ui:       NewUIManager(config.Verbose, config.Quiet),
		activity: InitActivityLog(config),
		stdout:   os.Stdout,
		now:      time.Now,
	}
	app.transcriber = NewClient(config.BaseURL, config.Timeout)

	// Apply any custom options
	for _, option := range options {
		option(app)
	}

	return app
}

// AppOption customizes App creation
type AppOption func(*App)

// WithTranscriber sets a custom transcription backend
func WithTranscriber(t Transcriber) AppOption {
	return func(a *App) {
		a.transcriber = t
	}
}

// WithUI sets a custom UI manager
func WithUI(ui UIManager) AppOption {
	return func(a *App) {
		a.ui = ui
	}
}

// WithStdout redirects transcript output
func WithStdout(w io.Writer) AppOption {
	return func(a *App) {
		a.stdout = w
	}
}

// WithActivityLog sets the activity log
func WithActivityLog(l *ActivityLog) AppOption {
	return func(a *App) {
		a.activity = l
	}
}

// WithClock sets the clock used for history file names
func WithClock(now func() time.Time) AppOption {
	return func(a *App) {
		a.now = now
	}
}

// Transcribe sends the request to the service and returns the transcript
func (app *App) Transcribe(ctx context.Context, req TranscriptionRequest) (string, error) {
	app.ui.Verbose("Sending %s %q (account %d, lang %s)\n", req.Source.Kind, req.Source.Input, req.AccountID, req.Language)

	var spinner, upload ProgressBar
	if req.Source.IsLink() {
		spinner = app.ui.NewSpinner("Waiting for the service to process the link...")
	} else {
		ctx = WithUploadProgress(ctx, func(total int64, description string) io.Writer {
			upload = app.ui.NewProgressBar(total, description)
			return upload
		})
	}

	start := app.now()
	transcript, err := app.transcriber.Transcribe(ctx, req)
	elapsed := app.now().Sub(start)

	if spinner != nil {
		spinner.Finish()
	}
	if upload != nil {
		upload.Finish()
	}

	if err != nil {
		app.logFailure(req, err, elapsed)
		return "", err
	}

	app.activity.Info("%s %q transcribed in %s (%d bytes)", req.Source.Kind, req.Source.Input, elapsed.Round(time.Millisecond), len(transcript))
	app.ui.Verbose("Received %d bytes in %s\n", len(transcript), elapsed.Round(time.Millisecond))

	if app.config.KeepHistory {
		path, err := SaveTranscript(req.Source, transcript, app.config.TranscriptsDir, app.now())
		if err != nil {
			app.ui.Warnf("%v\n", err)
		} else {
			app.ui.Verbose("Saved transcript to %s\n", path)
		}
	}

	return transcript, nil
}

func (app *App) logFailure(req TranscriptionRequest, err error, elapsed time.Duration) {
	var fileErr *FileAccessError
	var failedErr *TranscriptionFailedError
	switch {
	case errors.As(err, &fileErr):
		app.activity.Error("problem opening audio file %s: %v", fileErr.Path, fileErr.Err)
	case errors.As(err, &failedErr):
		app.activity.Error("%s %q failed with status %d after %s", req.Source.Kind, req.Source.Input, failedErr.StatusCode, elapsed.Round(time.Millisecond))
	default:
		app.activity.Error("%s %q: %v", req.Source.Kind, req.Source.Input, err)
	}
}

// Emit writes the transcript to outputFile, or to stdout when outputFile is empty
func (app *App) Emit(transcript, outputFile string) error {
	if outputFile != "" {
		if err := WriteTranscript(outputFile, transcript); err != nil {
			return err
		}
		app.ui.Printf("Your transcription has been written to file %s\n", outputFile)
		return nil
	}

	if _, err := fmt.Fprintln(app.stdout, transcript); err != nil {
		return fmt.Errorf("writing transcript: %w", err)
	}
	return nil
}

// Run transcribes the request and disposes of the result
func (app *App) Run(ctx context.Context, req TranscriptionRequest, outputFile string) error {
	transcript, err := app.Transcribe(ctx, req)
	if err != nil {
		return err
	}
	return app.Emit(transcript, outputFile)
}
