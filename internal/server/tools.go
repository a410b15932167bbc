package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func numberProp(description string, def float64) map[string]interface{} {
	return map[string]interface{}{
		"type":        "number",
		"description": description,
		"default":     def,
	}
}

func pathSchema(extra map[string]interface{}, required ...string) map[string]interface{} {
	props := map[string]interface{}{
		"path": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to the image file",
		},
	}
	for k, v := range extra {
		props[k] = v
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": props,
		"required":   append([]string{"path"}, required...),
	}
}

// gradeProperties are the grading inputs shared by hdr_process_shot and
// hdr_resolve_grade.
func gradeProperties() map[string]interface{} {
	return map[string]interface{}{
		"preset": map[string]interface{}{
			"type":        "string",
			"description": "Look preset layered on top of the explicit values: none, neutral, warm, cool, dramatic, vintage, noir. Unknown names are ignored.",
		},
		"exposure":    numberProp("Exposure in stops; each stop doubles linear light", 0),
		"contrast":    numberProp("Contrast multiplier around mid-gray; 1.0 is neutral", 1),
		"saturation":  numberProp("Saturation multiplier around luma; 1.0 is neutral, 0 is grayscale", 1),
		"temperature": numberProp("Warm (+) or cool (-) shift; 0 is neutral", 0),
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	process := gradeProperties()
	process["source"] = map[string]interface{}{
		"type":        "string",
		"description": "http(s) URL, file:// URL or filesystem path of the 8-bit source image",
	}
	process["shot_id"] = map[string]interface{}{
		"type":        "string",
		"description": "Identifier prefixed to every artifact filename. Must be unique per run; a random one is generated when omitted.",
	}

	return []Tool{
		// Grading
		{
			Name:        "hdr_process_shot",
			Description: "Grade an image in 16-bit precision and export a 16-bit TIFF, a 16-bit PNG, a tone-mapped JPEG preview and a before/after comparison. Returns the artifact paths.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": process,
				"required":   []string{"source"},
			},
		},
		{
			Name:        "hdr_list_presets",
			Description: "List the grading presets and the adjustments each one applies to neutral settings.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "hdr_resolve_grade",
			Description: "Resolve a preset plus explicit values into the effective adjustments without touching any image. Reports whether the preset name was recognized.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": gradeProperties(),
			},
		},

		// Artifact inspection
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format, bit depth, alpha, size and BLAKE3 digest.",
			InputSchema: pathSchema(nil),
		},
		{
			Name:        "image_sample_color",
			Description: "Get the color at a pixel, at the file's 16-bit precision and as the 8-bit display value.",
			InputSchema: pathSchema(map[string]interface{}{
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "X coordinate (0-based)",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Y coordinate (0-based)",
				},
			}, "x", "y"),
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
