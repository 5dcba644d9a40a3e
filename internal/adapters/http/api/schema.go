package api

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/okian/fieldtrace/internal/domain/trace"
)

// JSONSchema describes a trace payload: an envelope or a bare sparse array.
func (TracePayload) JSONSchema() *jsonschema.Schema {
	return TraceSchema()
}

// TraceSchema returns the JSON Schema of the trace wire format.
func TraceSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
	}
	envelope := reflector.ReflectFromType(reflect.TypeOf(trace.Envelope{}))
	envelope.Version = ""
	envelope.Title = "Trace Envelope"
	envelope.Description = "A trace tagged with its representation state."

	point := &jsonschema.Schema{
		Type:        "array",
		Title:       "Time Point",
		Description: "Tuple [index, x, y, action]. x and y are normalized to [0, 1]; action is a season code or 0.",
		Items: &jsonschema.Schema{
			OneOf: []*jsonschema.Schema{{Type: "number"}, {Type: "string"}},
		},
	}
	bare := &jsonschema.Schema{
		Type:        "array",
		Title:       "Sparse Trace",
		Description: "Bare array of sparse points.",
		Items:       point,
	}

	return &jsonschema.Schema{
		Version:     jsonschema.Version,
		Title:       "Match Trace",
		Description: "Robot movement and actions over one match.",
		OneOf:       []*jsonschema.Schema{envelope, bare},
	}
}

// SubmissionSchema returns the JSON Schema of the POST /traces body.
func SubmissionSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
	}
	schema := reflector.Reflect(new(SubmitRequest))
	schema.Title = "Trace Submission"
	schema.Description = "Body of POST /traces."
	return schema
}

// SchemaHandler serves the generated JSON Schemas.
type SchemaHandler struct {
	schemas map[string]func() *jsonschema.Schema
}

// NewSchemaHandler creates a new schema handler.
func NewSchemaHandler() *SchemaHandler {
	return &SchemaHandler{schemas: map[string]func() *jsonschema.Schema{
		"submission": SubmissionSchema,
		"trace":      TraceSchema,
	}}
}

// HandleSchema handles GET /schema/{submission|trace} requests.
func (h *SchemaHandler) HandleSchema(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	name := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/schema/"), ".json")
	build, ok := h.schemas[name]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/schema+json")
	writeJSON(w, http.StatusOK, build())
}
