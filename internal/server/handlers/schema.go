package handlers

import (
	"context"

	"github.com/invopop/jsonschema"
	"github.com/snapdb/snapdb/internal/models"
)

// SchemaRequest is the request type for the schema endpoint (empty).
type SchemaRequest struct{}

// SchemaResponse maps payload names to their JSON Schemas, so API clients
// can discover the request and response shapes without a separate document.
type SchemaResponse map[string]*jsonschema.Schema

// Schema returns JSON Schemas for the public API payloads.
func Schema(ctx context.Context, req SchemaRequest) (*SchemaResponse, error) {
	// Inline properties, no $ref: each schema stands alone.
	r := jsonschema.Reflector{Anonymous: true, DoNotReference: true}
	schemas := SchemaResponse{
		"Item":            r.Reflect(&models.Item{}),
		"LoginRequest":    r.Reflect(&LoginRequest{}),
		"LoginResponse":   r.Reflect(&LoginResponse{}),
		"RegisterRequest": r.Reflect(&RegisterRequest{}),
		"CreateItem":      r.Reflect(&CreateItemRequest{}),
		"UpdateItem":      r.Reflect(&UpdateItemRequest{}),
	}
	return &schemas, nil
}
