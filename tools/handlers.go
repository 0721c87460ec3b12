package tools

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/Dr4goniez/mwbot-ts-sub003/metrics"
	"github.com/Dr4goniez/mwbot-ts-sub003/tracing"
	"github.com/Dr4goniez/mwbot-ts-sub003/wiki"
	"github.com/Dr4goniez/mwbot-ts-sub003/wikitext"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// SiteInfoArgs has no fields; the tool takes no parameters.
type SiteInfoArgs struct{}

// SiteInfoResult summarizes the wiki for tool consumers.
type SiteInfoResult struct {
	SiteName          string   `json:"site_name" jsonschema:"name of the wiki"`
	Generator         string   `json:"generator" jsonschema:"MediaWiki version string"`
	Language          string   `json:"language" jsonschema:"content language code"`
	Server            string   `json:"server" jsonschema:"server URL"`
	MainPage          string   `json:"main_page" jsonschema:"title of the main page"`
	NamespaceCount    int      `json:"namespace_count" jsonschema:"number of configured namespaces"`
	ParserFunctions   int      `json:"parser_functions" jsonschema:"number of registered parser function hooks"`
	InterwikiPrefixes []string `json:"interwiki_prefixes,omitempty" jsonschema:"known interwiki prefixes"`
}

// BuildTemplateArgs are the arguments for wikitext_build_template.
type BuildTemplateArgs struct {
	Title       string     `json:"title" jsonschema:"template title; bare names resolve to the Template namespace"`
	Params      []string   `json:"params,omitempty" jsonschema:"parameters, each 'value' for positional or 'key=value' for named"`
	Hierarchies [][]string `json:"hierarchies,omitempty" jsonschema:"key equivalence chains where later keys override earlier ones"`
}

// BuildTemplateResult is the result of wikitext_build_template.
type BuildTemplateResult struct {
	Wikitext   string `json:"wikitext" jsonschema:"the stringified template transclusion"`
	Title      string `json:"title" jsonschema:"canonical prefixed title of the template"`
	ParamCount int    `json:"param_count" jsonschema:"number of effective parameters after overrides"`
}

// VerifyHookArgs are the arguments for wikitext_verify_hook.
type VerifyHookArgs struct {
	Candidate string `json:"candidate" jsonschema:"text beginning with a potential parser function hook, e.g. '#if:condition'"`
}

// VerifyHookResult is the result of wikitext_verify_hook.
type VerifyHookResult struct {
	Valid     bool   `json:"valid" jsonschema:"whether the candidate starts with a recognized hook"`
	Canonical string `json:"canonical,omitempty" jsonschema:"canonical hook key, e.g. '#if:'"`
	Match     string `json:"match,omitempty" jsonschema:"the matched prefix of the candidate, colon included"`
}

// HandlerRegistry provides type-safe tool registration by mapping
// tool names to their concrete handler implementations.
type HandlerRegistry struct {
	client *wiki.Client
	logger *slog.Logger
}

// NewHandlerRegistry creates a new handler registry.
func NewHandlerRegistry(client *wiki.Client, logger *slog.Logger) *HandlerRegistry {
	return &HandlerRegistry{
		client: client,
		logger: logger,
	}
}

// RegisterAll registers all tools with the MCP server.
func (h *HandlerRegistry) RegisterAll(server *mcp.Server) {
	for _, spec := range AllTools {
		h.registerByName(server, spec)
	}
	h.logger.Info("Registered all tools", "count", len(AllTools))
}

// registerByName dispatches to the correct typed registration function.
func (h *HandlerRegistry) registerByName(server *mcp.Server, spec ToolSpec) {
	tool := h.buildTool(spec)

	switch spec.Method {
	case "Search":
		register(h, server, tool, spec, h.client.Search)
	case "GetPage":
		register(h, server, tool, spec, h.client.GetPage)
	case "GetPageInfo":
		register(h, server, tool, spec, h.client.GetPageInfo)
	case "GetSiteInfo":
		register(h, server, tool, spec, h.getSiteInfo)
	case "EditPage":
		register(h, server, tool, spec, h.client.EditPage)
	case "BuildTemplate":
		register(h, server, tool, spec, h.buildTemplate)
	case "VerifyHook":
		register(h, server, tool, spec, h.verifyHook)
	default:
		h.logger.Error("Unknown method, tool not registered", "method", spec.Method, "tool", spec.Name)
	}
}

// buildTool creates an mcp.Tool from a ToolSpec.
func (h *HandlerRegistry) buildTool(spec ToolSpec) *mcp.Tool {
	annotations := &mcp.ToolAnnotations{
		Title:          spec.Title,
		ReadOnlyHint:   spec.ReadOnly,
		IdempotentHint: spec.Idempotent,
	}
	if spec.Destructive {
		annotations.DestructiveHint = ptr(true)
	}
	if spec.OpenWorld {
		annotations.OpenWorldHint = ptr(true)
	}

	return &mcp.Tool{
		Name:        spec.Name,
		Description: spec.Description,
		Annotations: annotations,
	}
}

// getSiteInfo adapts the client's siteinfo fetch to a tool-shaped result.
func (h *HandlerRegistry) getSiteInfo(ctx context.Context, _ SiteInfoArgs) (SiteInfoResult, error) {
	info, err := h.client.GetSiteInfo(ctx)
	if err != nil {
		return SiteInfoResult{}, err
	}
	return SiteInfoResult{
		SiteName:          info.General.SiteName,
		Generator:         info.General.Generator,
		Language:          info.General.Language,
		Server:            info.General.Server,
		MainPage:          info.General.MainPage,
		NamespaceCount:    len(info.Namespaces),
		ParserFunctions:   len(info.FunctionHooks),
		InterwikiPrefixes: info.InterwikiPrefixes,
	}, nil
}

// buildTemplate assembles a template node from the wiki's live namespace
// configuration and returns its stringified form.
func (h *HandlerRegistry) buildTemplate(ctx context.Context, args BuildTemplateArgs) (BuildTemplateResult, error) {
	if args.Title == "" {
		return BuildTemplateResult{}, fmt.Errorf("title is required")
	}

	codec, err := h.client.Codec(ctx)
	if err != nil {
		return BuildTemplateResult{}, fmt.Errorf("failed to load namespace configuration: %w", err)
	}

	t, err := codec.Parse(args.Title, wikitext.NSTemplate)
	if err != nil {
		return BuildTemplateResult{}, fmt.Errorf("invalid template title: %w", err)
	}

	tpl, err := wikitext.NewTemplate(t, args.Hierarchies...)
	if err != nil {
		return BuildTemplateResult{}, err
	}

	for _, p := range args.Params {
		if idx := strings.Index(p, "="); idx >= 0 {
			tpl.InsertParam(p[:idx], p[idx+1:], true)
		} else {
			tpl.InsertParam("", p, true)
		}
	}

	return BuildTemplateResult{
		Wikitext:   tpl.String(),
		Title:      t.PrefixedText(),
		ParamCount: len(tpl.Params()),
	}, nil
}

// verifyHook checks a candidate against the wiki's live hook table.
func (h *HandlerRegistry) verifyHook(ctx context.Context, args VerifyHookArgs) (VerifyHookResult, error) {
	if args.Candidate == "" {
		return VerifyHookResult{}, fmt.Errorf("candidate is required")
	}

	table, err := h.client.HookTable(ctx)
	if err != nil {
		return VerifyHookResult{}, fmt.Errorf("failed to load hook configuration: %w", err)
	}

	m, ok := table.Verify(args.Candidate)
	if !ok {
		return VerifyHookResult{Valid: false}, nil
	}
	return VerifyHookResult{
		Valid:     true,
		Canonical: m.Canonical,
		Match:     m.Match,
	}, nil
}

// register is a generic helper that registers a tool with the MCP server.
// It wraps the handler with panic recovery, metrics, tracing, and logging.
func register[Args, Result any](
	h *HandlerRegistry,
	server *mcp.Server,
	tool *mcp.Tool,
	spec ToolSpec,
	method func(context.Context, Args) (Result, error),
) {
	mcp.AddTool(server, tool, func(ctx context.Context, req *mcp.CallToolRequest, args Args) (*mcp.CallToolResult, Result, error) {
		defer h.recoverPanic(spec.Name)

		ctx, span := tracing.StartSpan(ctx, "mcp.tool."+spec.Name)
		defer span.End()

		span.SetAttributes(
			attribute.String("mcp.tool.name", spec.Name),
			attribute.String("mcp.tool.category", spec.Category),
			attribute.Bool("mcp.tool.readonly", spec.ReadOnly),
		)

		metrics.RequestInFlight.WithLabelValues(spec.Name).Inc()
		defer metrics.RequestInFlight.WithLabelValues(spec.Name).Dec()

		start := time.Now()
		result, err := method(ctx, args)
		duration := time.Since(start).Seconds()

		span.SetAttributes(attribute.Float64("mcp.tool.duration_seconds", duration))

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			metrics.RecordRequest(spec.Name, duration, false)
			var zero Result
			return nil, zero, fmt.Errorf("%s failed: %w", spec.Name, err)
		}

		span.SetStatus(codes.Ok, "")
		metrics.RecordRequest(spec.Name, duration, true)
		h.logExecution(spec, args, result)
		return nil, result, nil
	})
}

// recoverPanic recovers from panics in tool handlers.
func (h *HandlerRegistry) recoverPanic(toolName string) {
	if rec := recover(); rec != nil {
		metrics.PanicsRecovered.WithLabelValues(toolName).Inc()
		h.logger.Error("Panic recovered",
			"tool", toolName,
			"panic", rec,
			"stack", string(debug.Stack()))
	}
}

// logExecution logs tool execution details.
func (h *HandlerRegistry) logExecution(spec ToolSpec, args, result any) {
	attrs := []any{"tool", spec.Name}

	switch a := args.(type) {
	case wiki.SearchArgs:
		attrs = append(attrs, "query", a.Query)
	case wiki.GetPageArgs:
		attrs = append(attrs, "title", a.Title)
	case wiki.PageInfoArgs:
		attrs = append(attrs, "title", a.Title)
	case wiki.EditPageArgs:
		attrs = append(attrs, "title", a.Title, "content_bytes", len(a.Content))
	case BuildTemplateArgs:
		attrs = append(attrs, "title", a.Title, "params", len(a.Params))
	case VerifyHookArgs:
		attrs = append(attrs, "candidate", a.Candidate)
	}

	switch r := result.(type) {
	case wiki.SearchResult:
		attrs = append(attrs, "results_count", len(r.Results), "total_hits", r.TotalHits)
	case wiki.PageContent:
		attrs = append(attrs, "content_bytes", len(r.Content), "truncated", r.Truncated)
	case wiki.PageInfo:
		attrs = append(attrs, "exists", r.Exists)
	case wiki.EditResult:
		attrs = append(attrs, "success", r.Success, "new_page", r.NewPage)
	case SiteInfoResult:
		attrs = append(attrs, "site_name", r.SiteName)
	case BuildTemplateResult:
		attrs = append(attrs, "param_count", r.ParamCount)
	case VerifyHookResult:
		attrs = append(attrs, "valid", r.Valid)
	}

	h.logger.Info("Tool executed", attrs...)
}
