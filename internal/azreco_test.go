package internal_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/text/encoding/charmap"

	"github.com/rtzll/azreco/internal"
)

func newRequest(source internal.AudioSource) internal.TranscriptionRequest {
	return internal.TranscriptionRequest{
		AccountID: 42,
		APIToken:  "secret",
		Language:  "en-US",
		Source:    source,
	}
}

func writeAudio(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.wav")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	return path
}

func TestSubmitFileSendsMultipartUpload(t *testing.T) {
	audioPath := writeAudio(t, "RIFF-audio-bytes")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/transcribe" {
			t.Errorf("expected /transcribe, got %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("api_id") != "42" || q.Get("api_token") != "secret" || q.Get("lang") != "en-US" {
			t.Errorf("unexpected query params: %v", q)
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("read form file: %v", err)
			http.Error(w, "bad", http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if string(data) != "RIFF-audio-bytes" {
			t.Errorf("unexpected file content %q", data)
		}
		if header.Filename != "sample.wav" {
			t.Errorf("unexpected filename %q", header.Filename)
		}
		_, _ = io.WriteString(w, "hello transcript")
	}))
	defer srv.Close()

	client := internal.NewClient(srv.URL, time.Second)
	got, err := client.SubmitFile(context.Background(), newRequest(internal.AudioSource{Kind: internal.SourceLocalFile, Input: audioPath}))
	if err != nil {
		t.Fatalf("SubmitFile: %v", err)
	}
	if got != "hello transcript" {
		t.Fatalf("expected %q, got %q", "hello transcript", got)
	}
}

func TestSubmitLinkSendsFormParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transcribe_video_link" {
			t.Errorf("expected /transcribe_video_link, got %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.PostForm.Get("link") != "https://youtu.be/abc" {
			t.Errorf("unexpected link %q", r.PostForm.Get("link"))
		}
		if r.PostForm.Get("api_id") != "42" || r.PostForm.Get("api_token") != "secret" || r.PostForm.Get("lang") != "en-US" {
			t.Errorf("unexpected form params: %v", r.PostForm)
		}
		if _, _, err := r.FormFile("file"); err == nil {
			t.Errorf("link request must not carry a file part")
		}
		_, _ = io.WriteString(w, "hello transcript")
	}))
	defer srv.Close()

	client := internal.NewClient(srv.URL+"/", time.Second)
	got, err := client.SubmitLink(context.Background(), newRequest(internal.Classify("https://youtu.be/abc")))
	if err != nil {
		t.Fatalf("SubmitLink: %v", err)
	}
	if got != "hello transcript" {
		t.Fatalf("expected %q, got %q", "hello transcript", got)
	}
}

func TestNon200FailsBothOperations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := internal.NewClient(srv.URL, time.Second)
	sources := []internal.AudioSource{
		{Kind: internal.SourceLocalFile, Input: writeAudio(t, "x")},
		internal.Classify("https://www.youtube.com/watch?v=x"),
	}

	for _, source := range sources {
		_, err := client.Transcribe(context.Background(), newRequest(source))
		var failed *internal.TranscriptionFailedError
		if !errors.As(err, &failed) {
			t.Fatalf("%s: expected TranscriptionFailedError, got %v", source.Kind, err)
		}
		if failed.StatusCode != http.StatusInternalServerError {
			t.Fatalf("%s: expected status 500, got %d", source.Kind, failed.StatusCode)
		}
		if !errors.Is(err, internal.ErrTranscriptionFailed) {
			t.Fatalf("%s: expected errors.Is ErrTranscriptionFailed", source.Kind)
		}
	}
}

func TestSubmitFileMissingPathMakesNoRequest(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	missing := filepath.Join(t.TempDir(), "missing.wav")
	client := internal.NewClient(srv.URL, time.Second)
	_, err := client.SubmitFile(context.Background(), newRequest(internal.AudioSource{Kind: internal.SourceLocalFile, Input: missing}))

	var fileErr *internal.FileAccessError
	if !errors.As(err, &fileErr) {
		t.Fatalf("expected FileAccessError, got %v", err)
	}
	if fileErr.Path != missing {
		t.Fatalf("expected path %s, got %s", missing, fileErr.Path)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected wrapped not-exist error, got %v", err)
	}
	if calls.Load() != 0 {
		t.Fatalf("expected no requests, got %d", calls.Load())
	}
}

func TestTranscribeRoutesBySource(t *testing.T) {
	var mu sync.Mutex
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		_, _ = io.WriteString(w, "ok")
	}))
	defer srv.Close()

	client := internal.NewClient(srv.URL, time.Second)
	ctx := context.Background()
	if _, err := client.Transcribe(ctx, newRequest(internal.Classify(writeAudio(t, "a")))); err != nil {
		t.Fatalf("file: %v", err)
	}
	if _, err := client.Transcribe(ctx, newRequest(internal.Classify("dailymotion.com/video/x"))); err != nil {
		t.Fatalf("link: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(paths) != 2 || paths[0] != "/transcribe" || paths[1] != "/transcribe_video_link" {
		t.Fatalf("unexpected request paths %v", paths)
	}
}

type stubDoer struct {
	status      int
	body        string
	contentType string
	req         *http.Request
}

func (s *stubDoer) Do(req *http.Request) (*http.Response, error) {
	s.req = req
	header := make(http.Header)
	if s.contentType != "" {
		header.Set("Content-Type", s.contentType)
	}
	return &http.Response{
		StatusCode: s.status,
		Body:       io.NopCloser(bytes.NewBufferString(s.body)),
		Header:     header,
	}, nil
}

func TestClientUsesInjectedDoerAndDefaultBaseURL(t *testing.T) {
	doer := &stubDoer{status: http.StatusOK, body: "hello transcript"}
	client := internal.NewClient("", 0, internal.WithHTTPClient(doer))

	got, err := client.SubmitLink(context.Background(), newRequest(internal.Classify("facebook.com/v/1")))
	if err != nil {
		t.Fatalf("SubmitLink: %v", err)
	}
	if got != "hello transcript" {
		t.Fatalf("unexpected transcript %q", got)
	}
	if doer.req.URL.String() != internal.DefaultBaseURL+"/transcribe_video_link" {
		t.Fatalf("unexpected URL %s", doer.req.URL)
	}
	if doer.req.Header.Get("Content-Type") != "application/x-www-form-urlencoded" {
		t.Fatalf("unexpected content type %q", doer.req.Header.Get("Content-Type"))
	}
}

func TestUploadProgressReceivesEveryByte(t *testing.T) {
	doer := &stubDoer{status: http.StatusOK, body: "ok"}
	var progress bytes.Buffer
	var total int64
	client := internal.NewClient("http://example.test", time.Second, internal.WithHTTPClient(doer))
	ctx := internal.WithUploadProgress(context.Background(), func(size int64, description string) io.Writer {
		total = size
		return &progress
	})

	if _, err := client.SubmitFile(ctx, newRequest(internal.AudioSource{Kind: internal.SourceLocalFile, Input: writeAudio(t, "abcdef")})); err != nil {
		t.Fatalf("SubmitFile: %v", err)
	}

	// stubDoer never reads the body, so drain it the way a transport would
	if _, err := io.Copy(io.Discard, doer.req.Body); err != nil {
		t.Fatalf("drain body: %v", err)
	}
	if doer.req.ContentLength != total {
		t.Fatalf("content length %d does not match progress total %d", doer.req.ContentLength, total)
	}
	if int64(progress.Len()) != total {
		t.Fatalf("progress saw %d bytes, want %d", progress.Len(), total)
	}
}

func TestResponseIsDecodedFromDeclaredCharset(t *testing.T) {
	cyrillic, err := charmap.Windows1251.NewEncoder().String("Привет мир")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	tests := []struct {
		name        string
		contentType string
		body        string
		want        string
	}{
		{"latin1", "text/plain; charset=ISO-8859-1", "caf\xe9", "café"},
		{"windows-1251", "text/plain; charset=windows-1251", cyrillic, "Привет мир"},
		{"utf-8", "text/plain; charset=utf-8", "Salam dünya", "Salam dünya"},
		{"no charset", "text/plain", "caf\xe9", "caf\xe9"},
		{"unknown charset", "text/plain; charset=x-made-up", "raw", "raw"},
		{"no content type", "", "raw", "raw"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doer := &stubDoer{status: http.StatusOK, body: tt.body, contentType: tt.contentType}
			client := internal.NewClient("http://example.test", time.Second, internal.WithHTTPClient(doer))

			got, err := client.SubmitLink(context.Background(), newRequest(internal.Classify("youtu.be/x")))
			if err != nil {
				t.Fatalf("SubmitLink: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}
