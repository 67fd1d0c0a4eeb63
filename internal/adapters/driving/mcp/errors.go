// Package mcp provides an MCP (Model Context Protocol) server adapter
// for courtsearch. It enables AI assistants to search the indexed case
// law directly.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")
