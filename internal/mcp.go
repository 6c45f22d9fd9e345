package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// MCPServer wraps the MCP server and application dependencies
type MCPServer struct {
	app       *App
	mcpServer *server.MCPServer
}

// NewMCPServer creates a new MCP server instance
func NewMCPServer(app *App, version string) *MCPServer {
	mcpServer := server.NewMCPServer(
		"azreco-server",
		version,
		server.WithToolCapabilities(true),
	)

	s := &MCPServer{
		app:       app,
		mcpServer: mcpServer,
	}

	s.registerTools()

	return s
}

// registerTools registers all available MCP tools
func (s *MCPServer) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("transcribe_audio_file",
		mcp.WithDescription("Upload a local audio file to the Azreco service and return its transcript. The file must be readable by the machine running this server."),
		mcp.WithString("path",
			mcp.Description("Path to the audio file"),
			mcp.Required(),
		),
		mcp.WithString("lang",
			mcp.Description("Language code such as en-US, ru-RU or tr-TR (defaults to the configured language)"),
		),
	), s.handleTranscribeFile)

	s.mcpServer.AddTool(mcp.NewTool("transcribe_video_link",
		mcp.WithDescription("Ask the Azreco service to fetch and transcribe a public video link. Supported platforms: YouTube, Facebook, Dailymotion, Twitter."),
		mcp.WithString("url",
			mcp.Description("Video URL"),
			mcp.Required(),
		),
		mcp.WithString("lang",
			mcp.Description("Language code such as en-US, ru-RU or tr-TR (defaults to the configured language)"),
		),
	), s.handleTranscribeLink)
}

// handleTranscribeFile implements the transcribe_audio_file tool
func (s *MCPServer) handleTranscribeFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("path parameter is required and must be a string"), nil
	}

	source := AudioSource{Kind: SourceLocalFile, Input: path}
	return s.transcribe(ctx, source, request.GetString("lang", ""))
}

// handleTranscribeLink implements the transcribe_video_link tool
func (s *MCPServer) handleTranscribeLink(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url parameter is required and must be a string"), nil
	}

	source := Classify(url)
	if !source.IsLink() {
		return mcp.NewToolResultError(fmt.Sprintf("%s is not a supported video link (YouTube, Facebook, Dailymotion, Twitter)", url)), nil
	}
	return s.transcribe(ctx, source, request.GetString("lang", ""))
}

func (s *MCPServer) transcribe(ctx context.Context, source AudioSource, lang string) (*mcp.CallToolResult, error) {
	if lang == "" {
		lang = s.app.config.Lang
	}

	accountID, err := ParseAccountID(s.app.config.APIID)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("server is missing credentials", err), nil
	}

	req := TranscriptionRequest{
		AccountID: accountID,
		APIToken:  s.app.config.APIToken,
		Language:  lang,
		Source:    source,
	}
	if err := req.Validate(); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid transcription request", err), nil
	}

	s.app.activity.Debug("mcp: transcribing %s %q", source.Kind, source.Input)
	transcript, err := s.app.Transcribe(ctx, req)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("transcription failed", err), nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(transcript)},
	}, nil
}

const (
	mcpEndpoint = "/mcp"

	// shutdownTimeout bounds how long in-flight HTTP tool calls may take to drain
	shutdownTimeout = 5 * time.Second
)

// Start serves MCP on the specified transport until ctx is cancelled
func (s *MCPServer) Start(ctx context.Context, transport string, port int) error {
	if transport == "http" {
		listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
		if err != nil {
			return fmt.Errorf("listening on port %d: %w", port, err)
		}
		return s.serveHTTP(ctx, listener)
	}

	err := server.NewStdioServer(s.mcpServer).Listen(ctx, os.Stdin, os.Stdout)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *MCPServer) serveHTTP(ctx context.Context, listener net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle(mcpEndpoint, server.NewStreamableHTTPServer(s.mcpServer, server.WithEndpointPath(mcpEndpoint)))
	httpServer := &http.Server{Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(listener)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down MCP HTTP server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
