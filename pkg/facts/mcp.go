// SPDX-License-Identifier: Apache-2.0
package facts

import (
	"context"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/charlenopires/FlaFludeAgentes/pkg/errors"
)

const (
	defaultMCPTimeout = 10 * time.Second
	defaultMCPRetries = 2
	defaultMCPBackoff = 200 * time.Millisecond
)

// ToolCaller is the slice of the MCP client the source needs.
// *client.Client satisfies it.
type ToolCaller interface {
	CallTool(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
	Close() error
}

// MCPSource answers queries through an MCP tool server. It is selected by
// configuration when the fact base lives outside the process.
type MCPSource struct {
	mcpClient  ToolCaller
	tool       string
	timeout    time.Duration
	maxRetries int
	backoff    time.Duration
}

// MCPOption customizes an MCPSource.
type MCPOption func(*MCPSource)

// WithTimeout sets the per-call timeout.
func WithTimeout(timeout time.Duration) MCPOption {
	return func(s *MCPSource) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// WithRetry configures retry count and backoff.
func WithRetry(retries int, backoff time.Duration) MCPOption {
	return func(s *MCPSource) {
		if retries >= 0 {
			s.maxRetries = retries
		}
		if backoff > 0 {
			s.backoff = backoff
		}
	}
}

// NewMCPSource wraps an initialized MCP client. The tool is invoked with a
// single "query" argument and its text content becomes the answer.
func NewMCPSource(c ToolCaller, tool string, opts ...MCPOption) *MCPSource {
	s := &MCPSource{
		mcpClient:  c,
		tool:       tool,
		timeout:    defaultMCPTimeout,
		maxRetries: defaultMCPRetries,
		backoff:    defaultMCPBackoff,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewMCPSourceStdio spawns an MCP tool server subprocess and connects to it
// over stdio.
func NewMCPSourceStdio(command string, args []string, tool string, opts ...MCPOption) (*MCPSource, error) {
	stdioClient, err := client.NewStdioMCPClient(command, nil, args...)
	if err != nil {
		return nil, errors.New(errors.CodeResearchUnavailable, "spawn mcp server", err)
	}
	if err := stdioClient.Start(context.Background()); err != nil {
		return nil, errors.New(errors.CodeResearchUnavailable, "start mcp server", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	initRequest := mcp.InitializeRequest{}
	initRequest.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initRequest.Params.ClientInfo = mcp.Implementation{
		Name:    "flaflu-facts",
		Version: "0.1.0",
	}
	if _, err := stdioClient.Initialize(ctx, initRequest); err != nil {
		return nil, errors.New(errors.CodeResearchUnavailable, "initialize mcp server", err)
	}

	return NewMCPSource(stdioClient, tool, opts...), nil
}

// Search implements Source over the MCP tool with retry and backoff.
func (s *MCPSource) Search(ctx context.Context, query string) (Answer, error) {
	req := mcp.CallToolRequest{}
	req.Params.Name = s.tool
	req.Params.Arguments = map[string]interface{}{"query": query}

	result, err := s.callWithRetry(ctx, req)
	if err != nil {
		return Answer{}, errors.New(errors.CodeResearchUnavailable, "mcp tool call failed", err).
			WithContext("tool", s.tool).
			WithRecoverable(true)
	}

	text := extractTextContent(result.Content)
	if result.IsError || text == "" {
		return Answer{
			Status: StatusNotFound,
			Text:   "Não há dados disponíveis sobre essa consulta.",
		}, nil
	}
	return Answer{
		Status:  StatusSuccess,
		Text:    text,
		Sources: []string{"mcp:" + s.tool},
	}, nil
}

// Close closes the underlying client connection.
func (s *MCPSource) Close() error {
	return s.mcpClient.Close()
}

func (s *MCPSource) callWithRetry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var lastErr error
	attempts := s.maxRetries + 1
	for i := 0; i < attempts; i++ {
		reqCtx, cancel := s.withTimeout(ctx)
		res, err := s.mcpClient.CallTool(reqCtx, req)
		cancel()
		if err == nil {
			return res, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
		if i == attempts-1 {
			break
		}
		wait := s.backoff * time.Duration(1<<i)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil, lastErr
}

func (s *MCPSource) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func extractTextContent(items []mcp.Content) string {
	var parts []string
	for _, item := range items {
		switch typed := item.(type) {
		case mcp.TextContent:
			parts = append(parts, typed.Text)
		case *mcp.TextContent:
			parts = append(parts, typed.Text)
		}
	}
	return strings.Join(parts, "\n")
}
