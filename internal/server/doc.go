// Package server implements the MCP (Model Context Protocol) server that
// exposes the grading pipeline as tools.
//
// # Protocol
//
// The server speaks JSON-RPC 2.0, one request per line:
//   - Input: JSON-RPC requests on stdin
//   - Output: JSON-RPC responses on stdout
//
// Logging goes to stderr so it never interleaves with responses.
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Grading:
//   - hdr_process_shot: Grade a source image and export its artifacts
//   - hdr_list_presets: Preset names and their adjustments
//   - hdr_resolve_grade: Effective adjustments for a preset plus explicit values
//
// Artifact inspection:
//   - image_load: Dimensions, format, bit depth and digest of a file
//   - image_sample_color: 16-bit and 8-bit color at a pixel
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with code
// -32000 and the Go error string as data. Malformed request lines get a
// -32700 parse error with a null id.
//
// # Usage
//
//	srv := server.New(pipeline, logger, version)
//	if err := srv.Run(ctx, os.Stdin, os.Stdout); err != nil {
//	    log.Fatal(err)
//	}
package server
