package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Abhishek0104/LamForGallery-sub001/internal/logging"
	"github.com/Abhishek0104/LamForGallery-sub001/internal/services"
	"github.com/Abhishek0104/LamForGallery-sub001/pkg/models"
)

// Server is the tool dispatch layer: it maps named operations to handlers
// registered at startup and normalizes every outcome into a ResultEnvelope.
// Handlers never propagate an error outward; every failure becomes
// {ok:false, errorMessage}.
type Server struct {
	mcpServer   *server.MCPServer
	search      *services.SearchService
	scanner     *services.DuplicateScanner
	coordinator *services.ConsentCoordinator
	session     *services.Session
	notifier    services.Notifier
	logger      *logging.Logger
}

// NewServer creates a new Server and registers the tool table.
func NewServer(search *services.SearchService, scanner *services.DuplicateScanner, coordinator *services.ConsentCoordinator, session *services.Session, notifier services.Notifier, logger *logging.Logger) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"Gallery Agent",
			"1.0.0",
			server.WithToolCapabilities(true),
		),
		search:      search,
		scanner:     scanner,
		coordinator: coordinator,
		session:     session,
		notifier:    notifier,
		logger:      logger,
	}

	s.registerTools()
	return s
}

// GetMCPServer exposes the underlying MCP server for mounting.
func (s *Server) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"search_photos",
			mcp.WithDescription("Search the photo library. Exact filters (people, date range, location) intersect; an optional text query ranks the remainder by semantic similarity. The result becomes the session's current search result."),
			mcp.WithString("query", mcp.Description("Free-text query for semantic ranking")),
			mcp.WithArray("people", mcp.Description("Person names that must all appear; 'me' refers to the user")),
			mcp.WithString("start_date", mcp.Description("Earliest capture date, YYYY-MM-DD")),
			mcp.WithString("end_date", mcp.Description("Latest capture date, YYYY-MM-DD")),
			mcp.WithString("location", mcp.Description("Location substring match")),
		),
		s.handleSearchPhotos,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"select_photos",
			mcp.WithDescription("Set the session's manual selection to an explicit list of photo IDs"),
			mcp.WithArray("ids", mcp.Required(), mcp.Description("Photo IDs to select")),
		),
		s.handleSelectPhotos,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"delete_photos",
			mcp.WithDescription("Delete the photos of the declared source set. Requires user consent; returns a pending token until consent resolves."),
			mcp.WithString("source", mcp.Required(), mcp.Description("Which photo set to delete: 'search' or 'selection'")),
			mcp.WithString("reason", mcp.Description("Human-readable reason shown with the consent request")),
		),
		s.handleDeletePhotos,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"move_photos",
			mcp.WithDescription("Move the photos of the declared source set to an album. Requires user consent; returns a pending token until consent resolves."),
			mcp.WithString("source", mcp.Required(), mcp.Description("Which photo set to move: 'search' or 'selection'")),
			mcp.WithString("destination_album", mcp.Required(), mcp.Description("Album to move the photos into")),
			mcp.WithString("reason", mcp.Description("Human-readable reason shown with the consent request")),
		),
		s.handleMovePhotos,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"find_duplicates",
			mcp.WithDescription("Scan the library for near-duplicate photo groups"),
		),
		s.handleFindDuplicates,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_photo_info",
			mcp.WithDescription("Return the indexed metadata of one photo"),
			mcp.WithString("id", mcp.Required(), mcp.Description("The photo ID")),
		),
		s.handleGetPhotoInfo,
	)
}

// envelope marshals a ResultEnvelope into a tool result.
func envelope(env models.ResultEnvelope) *mcp.CallToolResult {
	jsonBytes, _ := json.Marshal(env)
	return mcp.NewToolResultText(string(jsonBytes))
}

func ok(payload interface{}) *mcp.CallToolResult {
	return envelope(models.ResultEnvelope{Ok: true, Payload: payload})
}

func fail(err error) *mcp.CallToolResult {
	return envelope(models.ResultEnvelope{Ok: false, ErrorMessage: err.Error()})
}

func argsMap(request mcp.CallToolRequest) (map[string]interface{}, bool) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok && request.Params.Arguments == nil {
		return map[string]interface{}{}, true
	}
	return args, ok
}

func stringArg(args map[string]interface{}, key string) string {
	v, _ := args[key].(string)
	return v
}

func stringSliceArg(args map[string]interface{}, key string) []string {
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (s *Server) handleSearchPhotos(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, valid := argsMap(request)
	if !valid {
		return fail(fmt.Errorf("invalid arguments type")), nil
	}

	filters := models.SearchFilters{
		TextQuery:   stringArg(args, "query"),
		Location:    stringArg(args, "location"),
		PersonNames: stringSliceArg(args, "people"),
	}

	start, end, err := services.ParseDateRange(stringArg(args, "start_date"), stringArg(args, "end_date"))
	if err != nil {
		// The date filter is skipped, not fatal.
		s.logger.Warn("skipping date filter: %v", err)
	} else {
		filters.DateStart = start
		filters.DateEnd = end
	}

	result, err := s.search.Resolve(ctx, filters)
	if err != nil {
		if errors.Is(err, models.ErrPersonNotFound) {
			s.notifier.Notify(services.UserMessage{Text: err.Error()})
		}
		return fail(err), nil
	}

	s.session.SetSearchResult(result)
	s.notifier.Notify(services.SearchResultsUpdated{Result: result})

	return ok(models.SearchPayload{Count: result.Count(), IDs: result.IDs}), nil
}

func (s *Server) handleSelectPhotos(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, valid := argsMap(request)
	if !valid {
		return fail(fmt.Errorf("invalid arguments type")), nil
	}

	ids := stringSliceArg(args, "ids")
	if len(ids) == 0 {
		return fail(fmt.Errorf("missing required parameter: ids")), nil
	}

	s.session.SetSelection(ids)
	return ok(models.SearchPayload{Count: len(ids), IDs: ids}), nil
}

func (s *Server) handleDeletePhotos(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.handleMutation(ctx, request, models.MutationDelete, nil)
}

func (s *Server) handleMovePhotos(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, valid := argsMap(request)
	if !valid {
		return fail(fmt.Errorf("invalid arguments type")), nil
	}
	album := stringArg(args, "destination_album")
	if album == "" {
		return fail(fmt.Errorf("missing required parameter: destination_album")), nil
	}
	return s.handleMutation(ctx, request, models.MutationMove, map[string]string{
		models.DestinationAlbumParam: album,
	})
}

// handleMutation resolves the declared source set and hands the mutation to
// the coordinator. The declared source must be non-empty; an empty source
// never falls back to the other one.
func (s *Server) handleMutation(ctx context.Context, request mcp.CallToolRequest, kind models.MutationKind, extra map[string]string) (*mcp.CallToolResult, error) {
	args, valid := argsMap(request)
	if !valid {
		return fail(fmt.Errorf("invalid arguments type")), nil
	}

	source := models.MutationSource(stringArg(args, "source"))
	ids, err := s.session.Source(source)
	if err != nil {
		return fail(err), nil
	}
	if len(ids) == 0 {
		return fail(fmt.Errorf("%s set is empty: %w", source, models.ErrNoSourceAvailable)), nil
	}

	reason := stringArg(args, "reason")
	if reason == "" {
		reason = fmt.Sprintf("The assistant wants to %s %d photo(s)", kind, len(ids))
	}

	outcome, err := s.coordinator.Request(ctx, kind, ids, extra, reason)
	if err != nil {
		return fail(err), nil
	}

	if outcome.Executed {
		return ok(models.CompletePayload{Success: true, Count: outcome.Count}), nil
	}
	return ok(models.PendingPayload{
		RequiresPermission: true,
		Token:              outcome.Token,
		Count:              outcome.Count,
	}), nil
}

func (s *Server) handleFindDuplicates(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	groups, err := s.scanner.Scan(ctx)
	if err != nil {
		return fail(err), nil
	}

	s.notifier.Notify(services.DuplicatesFound{Groups: groups})

	return ok(map[string]interface{}{
		"count":  len(groups),
		"groups": groups,
	}), nil
}

func (s *Server) handleGetPhotoInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, valid := argsMap(request)
	if !valid {
		return fail(fmt.Errorf("invalid arguments type")), nil
	}

	id := stringArg(args, "id")
	if id == "" {
		return fail(fmt.Errorf("missing required parameter: id")), nil
	}

	rec, err := s.search.GetPhoto(ctx, id)
	if err != nil {
		return fail(err), nil
	}
	if rec == nil {
		return fail(fmt.Errorf("photo %s not in index", id)), nil
	}

	return ok(rec), nil
}

// MountHTTPHandlers mounts the MCP SSE and message endpoints on mux.
func MountHTTPHandlers(mux *http.ServeMux, mcpServer *server.MCPServer) {
	sseServer := server.NewSSEServer(mcpServer, server.WithStaticBasePath("/mcp"))

	mux.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		// Direct POST for tool calls
		if r.Method == http.MethodPost {
			sseServer.ServeHTTP(w, r)
			return
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	// SSE endpoints
	mux.HandleFunc("/mcp/sse", sseServer.ServeHTTP)
	mux.HandleFunc("/mcp/message", sseServer.ServeHTTP)
}
