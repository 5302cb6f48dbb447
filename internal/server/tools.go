package server

// Tool is an MCP tool definition.
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// pathOnlySchema is the input schema shared by tools that just take a frame
// file path.
func pathOnlySchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"path": map[string]interface{}{
				"type":        "string",
				"description": "Absolute path to the captured frame image",
			},
		},
		"required": []string{"path"},
	}
}

// ToolDefinitions returns all available tools.
func ToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "frame_load",
			Description: "Load a captured frame and report its dimensions. Caches the frame for subsequent tool calls.",
			InputSchema: pathOnlySchema(),
		},
		{
			Name:        "frame_dimensions",
			Description: "Get the width and height of a captured frame.",
			InputSchema: pathOnlySchema(),
		},
		{
			Name:        "ticket_locate",
			Description: "Locate the ticket and its embedded label in a frame. Returns boxes in full-resolution frame coordinates plus the diagnostic payload (stage, reason codes, scores, lighting tier).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the captured frame image",
					},
					"debug": map[string]interface{}{
						"type":        "boolean",
						"description": "Attach the diagnostic payload. Default true",
						"default":     true,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "ticket_normalize",
			Description: "Locate the ticket and rectify it into the canonical upright raster. Returns the normalization result with the canonical raster as base64 PNG.",
			InputSchema: pathOnlySchema(),
		},
		{
			Name:        "ticket_extract_fields",
			Description: "Run the full pipeline and return the name/seat field regions with their crops as base64 PNG.",
			InputSchema: pathOnlySchema(),
		},
	}
}
