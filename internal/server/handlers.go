package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"

	"github.com/gatescan/ticket-vision/internal/locate"
	"github.com/gatescan/ticket-vision/internal/normalize"
	"github.com/gatescan/ticket-vision/internal/roi"
)

// ToolCallParams are the parameters of a tools/call request.
type ToolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall executes the named tool and wraps its result in MCP's
// content format. Tool failures return a JSON-RPC error with code -32000.
func (s *Server) handleToolsCall(req *Request) *Response {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{"type": "text", "text": mustMarshalJSON(result)},
			},
		},
	}
}

// executeTool dispatches to the handler for the named tool.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "frame_load":
		return s.handleFrameLoad(args)
	case "frame_dimensions":
		return s.handleFrameDimensions(args)
	case "ticket_locate":
		return s.handleTicketLocate(args)
	case "ticket_normalize":
		return s.handleTicketNormalize(args)
	case "ticket_extract_fields":
		return s.handleTicketExtractFields(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

type pathArgs struct {
	Path string `json:"path"`
}

// FrameInfo describes a loaded frame.
type FrameInfo struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (s *Server) handleFrameLoad(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	return &FrameInfo{Width: b.Dx(), Height: b.Dy()}, nil
}

func (s *Server) handleFrameDimensions(args json.RawMessage) (interface{}, error) {
	return s.handleFrameLoad(args)
}

type locateArgs struct {
	Path  string `json:"path"`
	Debug *bool  `json:"debug"`
}

func (s *Server) handleTicketLocate(args json.RawMessage) (interface{}, error) {
	var a locateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	res := s.pipe.Localize(img)
	if a.Debug != nil && !*a.Debug {
		res.Debug = nil
	}
	s.log.WithFields(map[string]interface{}{
		"path":       a.Path,
		"found":      res.Found,
		"confidence": res.Confidence,
	}).Info("ticket_locate")
	return res, nil
}

// NormalizeResponse is the ticket_normalize payload: the localization and
// normalization contracts plus the canonical raster as base64 PNG.
type NormalizeResponse struct {
	Localization    *locate.Result    `json:"localization"`
	Normalization   *normalize.Result `json:"normalization,omitempty"`
	CanonicalBase64 string            `json:"canonical_base64,omitempty"`
	MimeType        string            `json:"mime_type,omitempty"`
}

func (s *Server) handleTicketNormalize(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	res := s.pipe.Process(img)
	out := &NormalizeResponse{
		Localization:  res.Localization,
		Normalization: res.Normalization,
	}
	if res.Normalization != nil && res.Normalization.Success {
		encoded, err := encodePNGBase64(res.Normalization.Canonical)
		if err != nil {
			return nil, err
		}
		out.CanonicalBase64 = encoded
		out.MimeType = "image/png"
	}
	return out, nil
}

// FieldPayload is one extracted field: its region on the canonical raster
// and the crop as base64 PNG.
type FieldPayload struct {
	Region       roi.Region `json:"region"`
	RasterBase64 string     `json:"raster_base64"`
}

// FieldsResponse is the ticket_extract_fields payload.
type FieldsResponse struct {
	Success bool          `json:"success"`
	Name    *FieldPayload `json:"name,omitempty"`
	Seat    *FieldPayload `json:"seat,omitempty"`
}

func (s *Server) handleTicketExtractFields(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	res := s.pipe.Process(img)
	if res.Fields == nil || !res.Fields.Success {
		return &FieldsResponse{Success: false}, nil
	}

	name, err := fieldPayload(res.Fields.Name)
	if err != nil {
		return nil, err
	}
	seat, err := fieldPayload(res.Fields.Seat)
	if err != nil {
		return nil, err
	}
	return &FieldsResponse{Success: true, Name: name, Seat: seat}, nil
}

func fieldPayload(f roi.Field) (*FieldPayload, error) {
	encoded, err := encodePNGBase64(f.Raster)
	if err != nil {
		return nil, err
	}
	return &FieldPayload{Region: f.Region, RasterBase64: encoded}, nil
}

// encodePNGBase64 encodes an image as a base64 PNG string.
func encodePNGBase64(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode raster: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// mustMarshalJSON serializes a tool result, falling back to an error string
// on marshal failure.
func mustMarshalJSON(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf(`{"error":"failed to marshal result: %s"}`, err)
	}
	return string(data)
}
