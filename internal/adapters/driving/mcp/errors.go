// Package mcp provides an MCP (Model Context Protocol) server adapter for notely.
// It lets AI assistants search the user's notes, ask questions about them
// and read chat threads.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")

// errNotConfigured is returned by tools whose service was not provided.
var errNotConfigured = errors.New("mcp: service not configured")
