// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes dagaz day-journal tools for LLM integration via stdio
// transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/dagaz/internal/dayservice"
	"github.com/starford/dagaz/internal/journal"
)

// Server wraps the MCP server with dagaz tools.
type Server struct {
	mcp *server.MCPServer
	svc *dayservice.Service
}

// New creates a new MCP server with all dagaz tools registered.
func New(svc *dayservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Dagaz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("get_day",
		mcp.WithDescription("Get the notes and free text recorded for one calendar day."),
		mcp.WithString("date", mcp.Required(), mcp.Description("Calendar day in YYYY-MM-DD")),
	), s.getDay)

	s.mcp.AddTool(mcp.NewTool("get_range",
		mcp.WithDescription("Get day snapshots for an inclusive date range. "+
			"Every day in the range is present, empty days included."),
		mcp.WithString("start", mcp.Required(), mcp.Description("First day, YYYY-MM-DD")),
		mcp.WithString("end", mcp.Required(), mcp.Description("Last day, YYYY-MM-DD")),
	), s.getRange)

	s.mcp.AddTool(mcp.NewTool("add_note",
		mcp.WithDescription("Quick-add a single note to today."),
		mcp.WithString("body", mcp.Required(), mcp.Description("Note text")),
		mcp.WithBoolean("completed", mcp.Description("Mark the note done on creation")),
	), s.addNote)

	s.mcp.AddTool(mcp.NewTool("sync_day",
		mcp.WithDescription("Replace a day's state with an edited day document. "+
			"The document MUST follow the canonical day format (header, note "+
			"lines, free text). Read the contract first via the "+
			"get_document_format tool or the dagaz://document-format resource. "+
			"Notes omitted from the document are deleted."),
		mcp.WithString("document", mcp.Required(), mcp.Description("Markdown day document following the dagaz format contract")),
	), s.syncDay)

	s.mcp.AddTool(mcp.NewTool("get_document_format",
		mcp.WithDescription("Returns the canonical dagaz day document format contract. "+
			"Call this before composing a document for sync_day."),
	), s.getDocumentFormat)

	// Resource: day document format contract.
	s.mcp.AddResource(
		mcp.NewResource("dagaz://document-format", "Day Document Format Contract",
			mcp.WithResourceDescription("Canonical Markdown day document format consumed by sync_day."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readDocumentFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) getDay(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ds, err := req.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	date, err := time.ParseInLocation(journal.DateFormat, ds, time.UTC)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid date %q, want YYYY-MM-DD", ds)), nil
	}
	day, err := s.svc.Day(ctx, date)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(day, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getRange(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ss, err := req.RequireString("start")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	es, err := req.RequireString("end")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	start, err := time.ParseInLocation(journal.DateFormat, ss, time.UTC)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid start %q, want YYYY-MM-DD", ss)), nil
	}
	end, err := time.ParseInLocation(journal.DateFormat, es, time.UTC)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid end %q, want YYYY-MM-DD", es)), nil
	}
	days, err := s.svc.Range(ctx, start, end)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(days, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) addNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body, err := req.RequireString("body")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if body == "" {
		return mcp.NewToolResultError("body is required"), nil
	}
	completed := req.GetBool("completed", false)

	note, err := s.svc.QuickAdd(ctx, body, completed)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created note %d for %s",
		note.ID, journal.DateOf(note.CreatedAt).Format(journal.DateFormat))), nil
}

func (s *Server) syncDay(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	buf, err := req.RequireString("document")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := journal.ParseDocument(buf, time.Now().UTC())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	day, err := s.svc.SyncDocument(ctx, *doc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(day, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getDocumentFormat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DocumentFormatContract), nil
}

func (s *Server) readDocumentFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "dagaz://document-format",
			MIMEType: "text/markdown",
			Text:     DocumentFormatContract,
		},
	}, nil
}
