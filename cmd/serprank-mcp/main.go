package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// searchResponse mirrors the serprank search API response.
type searchResponse struct {
	Success      bool   `json:"success"`
	Provider     string `json:"provider"`
	Positions    string `json:"positions"`
	CacheStatus  string `json:"cache_status"`
	PagesFetched int    `json:"pages_fetched"`
	Error        *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// providersResponse mirrors the serprank providers API response.
type providersResponse struct {
	Providers []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"providers"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func main() {
	apiURL := os.Getenv("SERPRANK_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("SERPRANK_API_KEY")

	s := newServer(apiURL, apiKey)
	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func newServer(apiURL, apiKey string) *server.MCPServer {
	s := server.NewMCPServer(
		"serprank",
		"0.1.0",
		server.WithToolCapabilities(false),
	)

	findPositionsTool := mcp.NewTool("find_positions",
		mcp.WithDescription("Find the positions at which a URL appears in a search engine's organic results for a keyword phrase. Returns comma-separated 1-based positions, or 0 when the URL is not ranked."),
		mcp.WithString("keywords",
			mcp.Required(),
			mcp.Description("The search phrase (max 200 characters)"),
		),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL or domain to locate in the results, e.g. 'example.com'"),
		),
		mcp.WithString("provider",
			mcp.Description("Search engine: 'google' (default) or 'bing'"),
			mcp.Enum("google", "bing"),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of positions to report (default: 100, max: 1000)"),
		),
	)
	s.AddTool(findPositionsTool, handleFindPositions(apiURL, apiKey))

	listProvidersTool := mcp.NewTool("list_providers",
		mcp.WithDescription("List the search engines that rank lookups can query."),
	)
	s.AddTool(listProvidersTool, handleListProviders(apiURL, apiKey))

	return s
}

// apiGet sends a GET request to the serprank API and returns the response body.
func apiGet(ctx context.Context, client *http.Client, apiURL, apiKey, path string, query url.Values) ([]byte, error) {
	target := apiURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

func handleFindPositions(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 120 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		keywords, err := request.RequireString("keywords")
		if err != nil {
			return mcp.NewToolResultError("keywords is required"), nil
		}
		target, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		query := url.Values{
			"keywords": {keywords},
			"url":      {target},
			"provider": {request.GetString("provider", "google")},
		}
		if n := request.GetInt("max_results", 0); n > 0 {
			query.Set("max_results", strconv.Itoa(n))
		}

		respBody, err := apiGet(ctx, client, apiURL, apiKey, "/api/v1/search", query)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var searchResp searchResponse
		if err := json.Unmarshal(respBody, &searchResp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		if !searchResp.Success {
			errMsg := "search failed"
			if searchResp.Error != nil {
				errMsg = fmt.Sprintf("[%s] %s", searchResp.Error.Code, searchResp.Error.Message)
			}
			return mcp.NewToolResultError(errMsg), nil
		}

		var b strings.Builder
		if searchResp.Positions == "0" {
			fmt.Fprintf(&b, "%s is not ranked on %s for %q.\n", target, searchResp.Provider, keywords)
		} else {
			fmt.Fprintf(&b, "%s ranks on %s for %q at positions: %s\n", target, searchResp.Provider, keywords, searchResp.Positions)
		}
		fmt.Fprintf(&b, "\n---\nPositions: %s\nCache: %s, pages fetched: %d",
			searchResp.Positions, searchResp.CacheStatus, searchResp.PagesFetched)

		return mcp.NewToolResultText(b.String()), nil
	}
}

func handleListProviders(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 30 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		respBody, err := apiGet(ctx, client, apiURL, apiKey, "/api/v1/providers", nil)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var providersResp providersResponse
		if err := json.Unmarshal(respBody, &providersResp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}
		if providersResp.Error != nil {
			return mcp.NewToolResultError(fmt.Sprintf("[%s] %s", providersResp.Error.Code, providersResp.Error.Message)), nil
		}

		lines := make([]string, 0, len(providersResp.Providers))
		for _, p := range providersResp.Providers {
			lines = append(lines, fmt.Sprintf("%d: %s", p.ID, p.Name))
		}
		return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
	}
}
