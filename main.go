// MediaWiki MCP Server - A Model Context Protocol server for MediaWiki wikis.
// Provides tools for searching, reading, and editing wiki content, plus
// wikitext node construction backed by the live wiki's configuration.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/Dr4goniez/mwbot-ts-sub003/tools"
	"github.com/Dr4goniez/mwbot-ts-sub003/tracing"
	"github.com/Dr4goniez/mwbot-ts-sub003/wiki"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	ServerName    = "mediawiki-mcp-server"
	ServerVersion = "1.0.0"
)

func main() {
	// Logging goes to stderr; stdout carries the MCP protocol.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	config, err := wiki.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	shutdownTracing, err := tracing.Setup(ctx, tracing.DefaultConfig())
	if err != nil {
		log.Fatalf("Failed to set up tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("Tracing shutdown failed", "error", err)
		}
	}()

	client := wiki.NewClient(config, logger)
	defer client.Close()

	server := mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: ServerVersion,
	}, &mcp.ServerOptions{
		Logger: logger,
		Instructions: `MediaWiki MCP Server provides tools for interacting with MediaWiki wikis.

Available tools:
- mediawiki_search: Search for pages by text
- mediawiki_get_page: Get page content as wikitext
- mediawiki_get_page_info: Get metadata about a page
- mediawiki_get_siteinfo: Get wiki name, version, namespaces, and parser functions
- mediawiki_edit_page: Create or edit a page (requires authentication)
- wikitext_build_template: Build well-formed template markup from a title and parameters
- wikitext_verify_hook: Check whether text starts with a valid parser function hook

Configure via environment variables:
- MEDIAWIKI_URL: Wiki API URL (e.g., https://wiki.example.com/api.php)
- MEDIAWIKI_USERNAME: Bot username (for editing)
- MEDIAWIKI_PASSWORD: Bot password (for editing)`,
	})

	registry := tools.NewHandlerRegistry(client, logger)
	registry.RegisterAll(server)

	logger.Info("Starting MediaWiki MCP Server",
		"name", ServerName,
		"version", ServerVersion,
		"wiki_url", config.BaseURL,
	)

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
