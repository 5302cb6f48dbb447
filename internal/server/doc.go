// Package server implements the MCP (Model Context Protocol) diagnostic
// server for the ticket localization pipeline.
//
// The server speaks JSON-RPC 2.0 over stdio (one request per line on stdin,
// one response per line on stdout) and exposes the pipeline stages as tools
// so captured frames can be inspected and thresholds tuned without
// rebuilding the surrounding application.
//
// Supported MCP methods:
//   - initialize: protocol handshake
//   - tools/list: enumerate available tools
//   - tools/call: execute a tool with arguments
//   - ping: health check
//
// # Available Tools
//
//   - frame_load: load a capture and report its dimensions
//   - frame_dimensions: width/height only
//   - ticket_locate: run localization, optionally with the debug payload
//   - ticket_normalize: run localization + rectification; returns the
//     canonical raster as base64 PNG
//   - ticket_extract_fields: full pipeline; returns the name/seat field
//     regions and crops
//
// Logging goes to stderr because stdout carries the protocol stream.
package server
