package internal

import (
	"context"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

type recordingTranscriber struct {
	reqs []TranscriptionRequest
}

func (r *recordingTranscriber) Transcribe(ctx context.Context, req TranscriptionRequest) (string, error) {
	r.reqs = append(r.reqs, req)
	return "tool transcript", nil
}

func newTestMCPServer(cfg *Config) (*MCPServer, *recordingTranscriber) {
	rec := &recordingTranscriber{}
	app := NewApp(cfg,
		WithTranscriber(rec),
		WithUI(NewUIManagerWithWriter(&strings.Builder{}, false, true, false)),
	)
	return NewMCPServer(app, "test"), rec
}

func callTool(name string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{Params: mcp.CallToolParams{Name: name, Arguments: args}}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatalf("empty tool result")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content type %T", result.Content[0])
	}
	return text.Text
}

func TestMCPTranscribeLink(t *testing.T) {
	s, rec := newTestMCPServer(&Config{APIID: "5", APIToken: "tok", Lang: "en-US"})

	result, err := s.handleTranscribeLink(context.Background(), callTool("transcribe_video_link", map[string]any{
		"url":  "https://youtu.be/abc",
		"lang": "tr-TR",
	}))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, result))
	}
	if resultText(t, result) != "tool transcript" {
		t.Fatalf("unexpected transcript %q", resultText(t, result))
	}
	if len(rec.reqs) != 1 {
		t.Fatalf("expected one request, got %d", len(rec.reqs))
	}
	got := rec.reqs[0]
	if got.AccountID != 5 || got.APIToken != "tok" || got.Language != "tr-TR" || !got.Source.IsLink() {
		t.Fatalf("unexpected request %+v", got)
	}
}

func TestMCPTranscribeLinkRejectsUnsupportedHost(t *testing.T) {
	s, rec := newTestMCPServer(&Config{APIID: "5", APIToken: "tok", Lang: "en-US"})

	result, err := s.handleTranscribeLink(context.Background(), callTool("transcribe_video_link", map[string]any{
		"url": "https://vimeo.com/1",
	}))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !result.IsError {
		t.Fatalf("expected tool error for unsupported link")
	}
	if len(rec.reqs) != 0 {
		t.Fatalf("no request should be sent, got %d", len(rec.reqs))
	}
}

func TestMCPTranscribeFileUsesConfiguredLanguage(t *testing.T) {
	s, rec := newTestMCPServer(&Config{APIID: "5", APIToken: "tok", Lang: "ru-RU"})

	result, err := s.handleTranscribeFile(context.Background(), callTool("transcribe_audio_file", map[string]any{
		"path": "youtube.com",
	}))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, result))
	}
	got := rec.reqs[0]
	if got.Language != "ru-RU" {
		t.Fatalf("expected configured language, got %q", got.Language)
	}
	if got.Source.Kind != SourceLocalFile {
		t.Fatalf("file tool must always upload, got %s", got.Source.Kind)
	}
}

func TestMCPMissingArgumentsAndCredentials(t *testing.T) {
	s, _ := newTestMCPServer(&Config{APIID: "5", APIToken: "tok", Lang: "en-US"})
	result, err := s.handleTranscribeFile(context.Background(), callTool("transcribe_audio_file", map[string]any{}))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !result.IsError {
		t.Fatalf("expected error for missing path")
	}

	s, rec := newTestMCPServer(&Config{APIToken: "tok", Lang: "en-US"})
	result, err = s.handleTranscribeLink(context.Background(), callTool("transcribe_video_link", map[string]any{
		"url": "youtu.be/x",
	}))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !result.IsError {
		t.Fatalf("expected error for missing account id")
	}
	if len(rec.reqs) != 0 {
		t.Fatalf("no request should be sent without credentials")
	}
}

func TestMCPHTTPServerStopsOnCancel(t *testing.T) {
	s, _ := newTestMCPServer(&Config{APIID: "5", APIToken: "tok"})

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	url := "http://" + listener.Addr().String() + mcpEndpoint

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.serveHTTP(ctx, listener)
	}()

	resp, err := http.Post(url, "text/plain", strings.NewReader("ping"))
	if err != nil {
		cancel()
		t.Fatalf("server not reachable: %v", err)
	}
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serveHTTP returned %v", err)
		}
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatalf("serveHTTP did not return after cancel")
	}

	if _, err := http.Post(url, "text/plain", strings.NewReader("ping")); err == nil {
		t.Fatalf("expected server to be closed")
	}
}

func TestMCPStartReturnsWhenContextCancelled(t *testing.T) {
	s, _ := newTestMCPServer(&Config{APIID: "5", APIToken: "tok"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() {
		done <- s.Start(ctx, "http", 0)
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Start returned %v", err)
		}
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatalf("Start did not return for a cancelled context")
	}
}
