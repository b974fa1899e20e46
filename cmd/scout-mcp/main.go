// Command scout-mcp exposes the search and crawl engine as MCP tools
// over stdio, for agent clients that speak the Model Context Protocol
// instead of HTTP. Logs go to stderr; stdout carries the protocol.
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/use-agent/scout/browser"
	"github.com/use-agent/scout/cache"
	"github.com/use-agent/scout/config"
	"github.com/use-agent/scout/loader"
	"github.com/use-agent/scout/memory"
	"github.com/use-agent/scout/models"
	"github.com/use-agent/scout/render"
	"github.com/use-agent/scout/search"
)

var version = "dev"

type app struct {
	cfg    *config.Config
	engine *search.Engine
	loader *loader.Loader
	cache  *cache.Cache
	memory *memory.Store
}

func main() {
	cfg := config.Load()
	setupLogger(cfg.Log)

	mgr := browser.NewManager(cfg.Browser, browser.NewProxyPool(cfg.Proxy.Entries))
	defer mgr.Close()

	mem, err := memory.NewStore(cfg.Memory)
	if err != nil {
		slog.Error("failed to open interaction log", "error", err)
		os.Exit(1)
	}

	a := &app{
		cfg:    cfg,
		engine: search.NewEngine(mgr, cfg.Search),
		loader: loader.New(mgr, cfg.Loader),
		cache:  cache.New(cfg.Cache.MaxEntries, cfg.Cache.TTL),
		memory: mem,
	}

	s := server.NewMCPServer("scout", version)
	s.AddTool(searchTool(), a.handleSearch)
	s.AddTool(loadTool(), a.handleLoad)
	s.AddTool(crawlTool(), a.handleCrawl)
	s.AddTool(recallTool(), a.handleRecall)

	slog.Info("mcp server starting", "version", version)
	if err := server.ServeStdio(s); err != nil {
		slog.Error("mcp server failed", "error", err)
		os.Exit(1)
	}
}

func searchTool() mcp.Tool {
	return mcp.NewTool("web_search",
		mcp.WithDescription("Search the web and return organic results with titles, URLs and snippets. Walks multiple result pages when asked."),
		mcp.WithString("query", mcp.Required(), mcp.Description("The search query.")),
		mcp.WithString("lang", mcp.Description("Result language, e.g. \"en\" or \"it\".")),
		mcp.WithNumber("results_per_page", mcp.Description("Results kept per page, 1-20. Default 5.")),
		mcp.WithNumber("max_pages", mcp.Description("Result pages to walk, 1-10. Default 1.")),
	)
}

func (a *app) handleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	sreq := &models.SearchRequest{
		Query:          query,
		Lang:           req.GetString("lang", ""),
		ResultsPerPage: req.GetInt("results_per_page", 0),
		MaxPages:       req.GetInt("max_pages", 0),
	}
	sreq.Defaults(a.cfg.Search.DefaultLang, a.cfg.Search.Stealth, a.cfg.Search.RetryCount)

	data, err := a.engine.Search(ctx, sreq)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if data.Blocked {
		return mcp.NewToolResultError("the search engine blocked the request, try again later"), nil
	}

	a.recordSearch(data)
	return jsonResult(map[string]any{
		"query":         data.Query,
		"results":       data.Results,
		"stats":         data.StatsText,
		"pages_fetched": data.PagesFetched,
	})
}

func loadTool() mcp.Tool {
	return mcp.NewTool("load_page",
		mcp.WithDescription("Load a single page and return its title, meta tags and links. Uses plain HTTP when possible, a headless browser when needed."),
		mcp.WithString("url", mcp.Required(), mcp.Description("The page URL.")),
		mcp.WithString("fetch_mode", mcp.Description("\"auto\" (default), \"http\" or \"browser\".")),
	)
}

func (a *app) handleLoad(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageURL, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	lreq := &models.LoadRequest{
		URL:       pageURL,
		FetchMode: req.GetString("fetch_mode", ""),
	}
	lreq.Defaults(a.cfg.Search.Stealth)

	info, err := a.loader.Load(ctx, lreq)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{
		"url":          info.URL,
		"final_url":    info.FinalURL,
		"status_code":  info.StatusCode,
		"title":        info.Title,
		"meta_tags":    info.MetaTags,
		"og_tags":      info.OGTags,
		"links":        info.Links,
		"fetch_method": info.FetchMethod,
	})
}

func crawlTool() mcp.Tool {
	return mcp.NewTool("crawl_page",
		mcp.WithDescription("Load a page and return its main content as Markdown."),
		mcp.WithString("url", mcp.Required(), mcp.Description("The page URL.")),
	)
}

func (a *app) handleCrawl(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageURL, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if entry, ok := a.cache.Get(pageURL, 0); ok {
		return mcp.NewToolResultText(entry.Markdown), nil
	}

	lreq := &models.LoadRequest{URL: pageURL}
	lreq.Defaults(a.cfg.Search.Stealth)
	info, err := a.loader.Load(ctx, lreq)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	article, err := render.FromHTML(info.HTML.Full, info.FinalURL)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	a.cache.Put(cache.Entry{
		URL:      pageURL,
		FinalURL: info.FinalURL,
		Title:    article.Title,
		Markdown: article.Markdown,
	})
	if _, memErr := a.memory.Add(memory.Interaction{
		Kind:    memory.KindCrawl,
		URL:     pageURL,
		Summary: article.Title,
	}); memErr != nil {
		slog.Warn("failed to record crawl interaction", "error", memErr)
	}
	return mcp.NewToolResultText(article.Markdown), nil
}

func recallTool() mcp.Tool {
	return mcp.NewTool("recall_interactions",
		mcp.WithDescription("List past searches and crawls from the interaction log, newest first."),
		mcp.WithString("kind", mcp.Description("Filter: \"search\", \"crawl\" or \"note\".")),
		mcp.WithNumber("limit", mcp.Description("Maximum entries to return. Default 20.")),
	)
}

func (a *app) handleRecall(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items := a.memory.List(req.GetString("kind", ""), req.GetInt("limit", 20))
	return jsonResult(map[string]any{"interactions": items, "count": len(items)})
}

func (a *app) recordSearch(data *models.SearchData) {
	if _, err := a.memory.Add(memory.Interaction{
		Kind:    memory.KindSearch,
		Query:   data.Query,
		Results: len(data.Results),
	}); err != nil {
		slog.Warn("failed to record search interaction", "error", err)
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError("failed to encode result"), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
