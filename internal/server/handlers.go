package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/cinegrade-mcp/internal/export"
	"github.com/ironsheep/cinegrade-mcp/internal/grade"
	"github.com/ironsheep/cinegrade-mcp/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "hdr_process_shot", "image_load").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Grading
	case "hdr_process_shot":
		return s.handleProcessShot(ctx, args)
	case "hdr_list_presets":
		return s.handleListPresets()
	case "hdr_resolve_grade":
		return s.handleResolveGrade(args)

	// Artifact inspection
	case "image_load":
		return s.handleImageLoad(args)
	case "image_sample_color":
		return s.handleImageSampleColor(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Grading Handlers ===

// gradeArgs uses pointers so an omitted contrast or saturation means 1.0
// rather than 0.
type gradeArgs struct {
	Preset      string   `json:"preset"`
	Exposure    *float64 `json:"exposure"`
	Contrast    *float64 `json:"contrast"`
	Saturation  *float64 `json:"saturation"`
	Temperature *float64 `json:"temperature"`
}

func (a gradeArgs) params() grade.Params {
	p := grade.Neutral()
	p.Preset = grade.ParsePreset(a.Preset)
	if a.Exposure != nil {
		p.Exposure = *a.Exposure
	}
	if a.Contrast != nil {
		p.Contrast = *a.Contrast
	}
	if a.Saturation != nil {
		p.Saturation = *a.Saturation
	}
	if a.Temperature != nil {
		p.Temperature = *a.Temperature
	}
	return p
}

type processShotArgs struct {
	gradeArgs
	Source string `json:"source"`
	ShotID string `json:"shot_id"`
}

type processShotResult struct {
	ShotID           string          `json:"shot_id"`
	Preset           grade.Preset    `json:"preset"`
	PresetRecognized bool            `json:"preset_recognized"`
	Effective        grade.Effective `json:"effective"`
	Artifacts        export.Manifest `json:"artifacts"`
}

func (s *Server) handleProcessShot(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a processShotArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Source == "" {
		return nil, errors.New("source is required")
	}
	if a.ShotID == "" {
		a.ShotID = s.newShotID()
	}

	params := a.params()
	eff, err := params.Resolve()
	if err != nil {
		return nil, err
	}
	manifest, err := s.processor.Process(ctx, a.Source, a.ShotID, params)
	if err != nil {
		return nil, err
	}
	// A rerun within the same second rewrites the same files.
	for _, path := range manifest.Paths() {
		s.cache.Evict(path)
	}

	return &processShotResult{
		ShotID:           a.ShotID,
		Preset:           params.Preset,
		PresetRecognized: grade.KnownPreset(params.Preset),
		Effective:        eff,
		Artifacts:        manifest,
	}, nil
}

type presetInfo struct {
	Name   grade.Preset    `json:"name"`
	Deltas grade.Effective `json:"deltas"`
}

func (s *Server) handleListPresets() (interface{}, error) {
	names := grade.Presets()
	out := make([]presetInfo, 0, len(names))
	for _, p := range names {
		out = append(out, presetInfo{Name: p, Deltas: grade.Deltas(p)})
	}
	return map[string]interface{}{"presets": out}, nil
}

type resolveGradeResult struct {
	Preset           grade.Preset    `json:"preset"`
	PresetRecognized bool            `json:"preset_recognized"`
	Effective        grade.Effective `json:"effective"`
}

func (s *Server) handleResolveGrade(args json.RawMessage) (interface{}, error) {
	var a gradeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	params := a.params()
	eff, err := params.Resolve()
	if err != nil {
		return nil, err
	}
	return &resolveGradeResult{
		Preset:           params.Preset,
		PresetRecognized: grade.KnownPreset(params.Preset),
		Effective:        eff,
	}, nil
}

// === Artifact Inspection Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

type imageSampleColorArgs struct {
	Path string `json:"path"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

func (s *Server) handleImageSampleColor(args json.RawMessage) (interface{}, error) {
	var a imageSampleColorArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.SampleColor(img, a.X, a.Y)
}
