package tools

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/Dr4goniez/mwbot-ts-sub003/wiki"
)

func newTestRegistry(t *testing.T) *HandlerRegistry {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	client := wiki.NewClient(&wiki.Config{
		BaseURL: "http://localhost/api.php",
		Timeout: 5 * time.Second,
	}, logger)
	t.Cleanup(client.Close)
	return NewHandlerRegistry(client, logger)
}

func TestNewHandlerRegistry(t *testing.T) {
	registry := newTestRegistry(t)

	if registry == nil {
		t.Fatal("Expected non-nil registry")
	}
	if registry.client == nil {
		t.Error("Registry should hold the wiki client reference")
	}
	if registry.logger == nil {
		t.Error("Registry should hold the logger reference")
	}
}

func TestBuildTool(t *testing.T) {
	registry := newTestRegistry(t)

	tests := []struct {
		name      string
		spec      ToolSpec
		wantName  string
		wantDesc  string
		wantRO    bool
		wantIdem  bool
		wantDestr bool
		wantOpen  bool
	}{
		{
			name: "read-only tool",
			spec: ToolSpec{
				Name:        "mediawiki_search",
				Title:       "Search Wiki",
				Description: "Search for pages by text",
				Method:      "Search",
				ReadOnly:    true,
				Idempotent:  true,
			},
			wantName:  "mediawiki_search",
			wantDesc:  "Search for pages by text",
			wantRO:    true,
			wantIdem:  true,
			wantDestr: false,
			wantOpen:  false,
		},
		{
			name: "destructive open world tool",
			spec: ToolSpec{
				Name:        "mediawiki_edit_page",
				Title:       "Edit Page",
				Description: "Create or rewrite page content",
				Method:      "EditPage",
				Destructive: true,
				OpenWorld:   true,
			},
			wantName:  "mediawiki_edit_page",
			wantDesc:  "Create or rewrite page content",
			wantDestr: true,
			wantOpen:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool := registry.buildTool(tt.spec)

			if tool.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", tool.Name, tt.wantName)
			}
			if tool.Description != tt.wantDesc {
				t.Errorf("Description = %q, want %q", tool.Description, tt.wantDesc)
			}
			if tool.Annotations == nil {
				t.Fatal("Expected annotations")
			}
			if tool.Annotations.ReadOnlyHint != tt.wantRO {
				t.Errorf("ReadOnlyHint = %v, want %v", tool.Annotations.ReadOnlyHint, tt.wantRO)
			}
			if tool.Annotations.IdempotentHint != tt.wantIdem {
				t.Errorf("IdempotentHint = %v, want %v", tool.Annotations.IdempotentHint, tt.wantIdem)
			}
			if tt.wantDestr && (tool.Annotations.DestructiveHint == nil || !*tool.Annotations.DestructiveHint) {
				t.Error("Expected DestructiveHint to be true")
			}
			if tt.wantOpen && (tool.Annotations.OpenWorldHint == nil || !*tool.Annotations.OpenWorldHint) {
				t.Error("Expected OpenWorldHint to be true")
			}
		})
	}
}

func TestRecoverPanic(t *testing.T) {
	registry := newTestRegistry(t)

	// recoverPanic must not panic itself
	func() {
		defer registry.recoverPanic("test_tool")
		panic("test panic")
	}()
}

func TestLogExecution(t *testing.T) {
	registry := newTestRegistry(t)
	spec := ToolSpec{Name: "test_tool"}

	registry.logExecution(spec,
		wiki.SearchArgs{Query: "test"},
		wiki.SearchResult{
			Results:   []wiki.SearchHit{{Title: "Test Page"}},
			TotalHits: 1,
		})

	registry.logExecution(spec,
		wiki.GetPageArgs{Title: "Main Page"},
		wiki.PageContent{Title: "Main Page", Content: "hello"})

	registry.logExecution(spec,
		BuildTemplateArgs{Title: "Infobox", Params: []string{"name=X"}},
		BuildTemplateResult{Wikitext: "{{Infobox|name=X}}", ParamCount: 1})

	registry.logExecution(spec,
		VerifyHookArgs{Candidate: "#if:x"},
		VerifyHookResult{Valid: true, Canonical: "#if:"})
}

func TestAllToolsNotEmpty(t *testing.T) {
	if len(AllTools) == 0 {
		t.Error("AllTools should not be empty")
	}

	for i, spec := range AllTools {
		if spec.Name == "" {
			t.Errorf("Tool %d has empty Name", i)
		}
		if spec.Method == "" {
			t.Errorf("Tool %s has empty Method", spec.Name)
		}
		if spec.Description == "" {
			t.Errorf("Tool %s has empty Description", spec.Name)
		}
		if spec.Category == "" {
			t.Errorf("Tool %s has empty Category", spec.Name)
		}
	}
}

func TestToolSpecMethods(t *testing.T) {
	knownMethods := map[string]bool{
		"Search":        true,
		"GetPage":       true,
		"GetPageInfo":   true,
		"GetSiteInfo":   true,
		"EditPage":      true,
		"BuildTemplate": true,
		"VerifyHook":    true,
	}

	for _, spec := range AllTools {
		if !knownMethods[spec.Method] {
			t.Errorf("Tool %s has unknown method: %s", spec.Name, spec.Method)
		}
	}
}

func TestToolsByCategory(t *testing.T) {
	searchTools := ToolsByCategory("search")
	if len(searchTools) == 0 {
		t.Error("Expected search tools")
	}
	for _, tool := range searchTools {
		if tool.Category != "search" {
			t.Errorf("Tool %s has category %s, expected search", tool.Name, tool.Category)
		}
	}

	writeTools := ToolsByCategory("write")
	for _, tool := range writeTools {
		if !tool.Destructive {
			t.Errorf("Write tool %s should be marked destructive", tool.Name)
		}
	}

	unknownTools := ToolsByCategory("unknown")
	if len(unknownTools) != 0 {
		t.Errorf("Expected 0 tools for unknown category, got %d", len(unknownTools))
	}
}
