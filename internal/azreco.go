package internal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/htmlindex"
)

const (
	// DefaultBaseURL is the public Azreco API host
	DefaultBaseURL = "http://api.azreco.az"

	// DefaultTimeout bounds a single request; the service can take minutes on long audio
	DefaultTimeout = 10 * time.Minute

	transcribePath     = "/transcribe"
	transcribeLinkPath = "/transcribe_video_link"

	userAgent = "azreco-cli/1.0"
)

// ErrTranscriptionFailed is matched by every TranscriptionFailedError
var ErrTranscriptionFailed = errors.New("transcription failed")

// FileAccessError is returned when the local audio file cannot be read
type FileAccessError struct {
	Path string
	Err  error
}

func (e *FileAccessError) Error() string {
	return fmt.Sprintf("problem opening audio file %s: %v", e.Path, e.Err)
}

func (e *FileAccessError) Unwrap() error {
	return e.Err
}

// TranscriptionFailedError is returned when the service answers with anything but 200.
// The response body is not inspected.
type TranscriptionFailedError struct {
	Endpoint   string
	StatusCode int
}

func (e *TranscriptionFailedError) Error() string {
	return fmt.Sprintf("transcription failed: %s returned status %d", e.Endpoint, e.StatusCode)
}

func (e *TranscriptionFailedError) Is(target error) bool {
	return target == ErrTranscriptionFailed
}

// HTTPDoer sends HTTP requests; *http.Client satisfies it
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ProgressFunc returns a writer that receives upload bytes as they are sent.
// Returning nil disables progress for that upload.
type ProgressFunc func(total int64, description string) io.Writer

type progressKey struct{}

// WithUploadProgress attaches fn to ctx so the file upload made with ctx reports to it.
// The function is scoped to the request, so concurrent calls never share a bar.
func WithUploadProgress(ctx context.Context, fn ProgressFunc) context.Context {
	return context.WithValue(ctx, progressKey{}, fn)
}

func uploadProgressFrom(ctx context.Context) ProgressFunc {
	fn, _ := ctx.Value(progressKey{}).(ProgressFunc)
	return fn
}

// Client talks to the Azreco transcription API
type Client struct {
	baseURL    string
	httpClient HTTPDoer
}

// ClientOption customizes Client creation
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(doer HTTPDoer) ClientOption {
	return func(c *Client) {
		c.httpClient = doer
	}
}

// NewClient creates a client for the service at baseURL
func NewClient(baseURL string, timeout time.Duration, options ...ClientOption) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// Transcribe routes the request to the upload or link endpoint based on its source
func (c *Client) Transcribe(ctx context.Context, req TranscriptionRequest) (string, error) {
	if req.Source.IsLink() {
		return c.SubmitLink(ctx, req)
	}
	return c.SubmitFile(ctx, req)
}

// SubmitFile uploads a local audio file as multipart form data
func (c *Client) SubmitFile(ctx context.Context, req TranscriptionRequest) (string, error) {
	path := req.Source.Input
	file, err := os.Open(path)
	if err != nil {
		return "", &FileAccessError{Path: path, Err: err}
	}
	defer file.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", fmt.Errorf("creating form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", &FileAccessError{Path: path, Err: err}
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("closing multipart writer: %w", err)
	}

	endpoint := c.baseURL + transcribePath
	size := int64(body.Len())

	var reader io.Reader = body
	if progress := uploadProgressFrom(ctx); progress != nil {
		if w := progress(size, "Uploading "+filepath.Base(path)); w != nil {
			reader = io.TeeReader(body, w)
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"?"+credentialValues(req).Encode(), reader)
	if err != nil {
		return "", fmt.Errorf("building upload request: %w", err)
	}
	httpReq.ContentLength = size
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	return c.do(httpReq, endpoint)
}

// SubmitLink asks the service to fetch and transcribe a video link
func (c *Client) SubmitLink(ctx context.Context, req TranscriptionRequest) (string, error) {
	form := credentialValues(req)
	form.Set("link", req.Source.Input)

	endpoint := c.baseURL + transcribeLinkPath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("building link request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.do(httpReq, endpoint)
}

func (c *Client) do(req *http.Request, endpoint string) (string, error) {
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request to %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", &TranscriptionFailedError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response from %s: %w", endpoint, err)
	}
	return decodeBody(data, resp.Header.Get("Content-Type")), nil
}

// decodeBody converts a body in the charset declared by contentType to UTF-8.
// Bodies without a charset, or with one we cannot decode, are returned unchanged.
func decodeBody(data []byte, contentType string) string {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return string(data)
	}
	charset := strings.ToLower(strings.TrimSpace(params["charset"]))
	if charset == "" || charset == "utf-8" || charset == "utf8" {
		return string(data)
	}

	enc, err := htmlindex.Get(charset)
	if err != nil {
		return string(data)
	}
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(decoded)
}

func credentialValues(req TranscriptionRequest) url.Values {
	values := url.Values{}
	values.Set("api_id", strconv.Itoa(req.AccountID))
	values.Set("api_token", req.APIToken)
	values.Set("lang", req.Language)
	return values
}
