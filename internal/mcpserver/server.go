package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/vzahanych/weather-tools-service/internal/tools"
	"go.uber.org/zap"
)

// Server exposes a toolkit over the Model Context Protocol.
type Server struct {
	server *mcp.Server
	kit    *tools.Toolkit
	logger *zap.Logger
}

func New(kit *tools.Toolkit, name, version string, logger *zap.Logger) *Server {
	s := &Server{
		server: mcp.NewServer(&mcp.Implementation{Name: name, Version: version}, nil),
		kit:    kit,
		logger: logger,
	}

	for _, t := range kit.Tools() {
		s.server.AddTool(&mcp.Tool{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: t.Schema(),
		}, s.handler(t.Name()))
	}

	return s
}

func (s *Server) MCP() *mcp.Server {
	return s.server
}

// Handler serves the Streamable HTTP transport.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil)
}

// RunStdio serves a single session over stdin/stdout until ctx is done or
// the client disconnects.
func (s *Server) RunStdio(ctx context.Context) error {
	s.logger.Info("Serving MCP over stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// handler maps toolkit outcomes onto MCP: rejected calls are protocol errors,
// handler faults are tool results with IsError set.
func (s *Server) handler(name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args json.RawMessage
		if req != nil && req.Params != nil {
			args = req.Params.Arguments
		}

		res, err := s.kit.Call(ctx, name, args)
		if err != nil {
			return nil, err
		}

		if !res.OK() {
			return &mcp.CallToolResult{
				IsError: true,
				Content: []mcp.Content{&mcp.TextContent{Text: res.Fault.Error()}},
			}, nil
		}

		data, err := json.Marshal(res.Value)
		if err != nil {
			return nil, fmt.Errorf("encoding %s result: %w", name, err)
		}

		return &mcp.CallToolResult{
			Content:           []mcp.Content{&mcp.TextContent{Text: string(data)}},
			StructuredContent: res.Value,
		}, nil
	}
}
