package repositoryimpl

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/kazz187/taskboard/internal/board"
	"github.com/kazz187/taskboard/pkg/cerr"
)

const boardSchemaURL = "taskboard://board.schema.json"

const boardSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "name"],
    "properties": {
      "id": {"type": "string", "minLength": 1},
      "name": {"type": "string"},
      "tasks": {
        "type": ["array", "null"],
        "items": {"$ref": "#/$defs/task"}
      }
    }
  },
  "$defs": {
    "task": {
      "type": "object",
      "required": ["id", "name"],
      "properties": {
        "id": {"type": "string", "minLength": 1},
        "name": {"type": "string"},
        "assignedTo": {"type": "string"},
        "description": {"type": "string"},
        "deadline": {"type": ["string", "null"], "format": "date-time"}
      }
    }
  }
}`

var boardSchema = func() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource(boardSchemaURL, strings.NewReader(boardSchemaJSON)); err != nil {
		panic(err)
	}
	return compiler.MustCompile(boardSchemaURL)
}()

// JSONCodec stores the board as a bare array of columns with camelCase keys and
// RFC 3339 deadlines. Input is checked against a JSON schema before decoding.
type JSONCodec struct{}

func (JSONCodec) Format() string { return "json" }

func (JSONCodec) Marshal(b board.Board) ([]byte, error) {
	return json.MarshalIndent(b.Normalize(), "", "  ")
}

func (JSONCodec) Unmarshal(data []byte) (board.Board, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, cerr.NewError(cerr.InvalidArgument, "stored board is not valid JSON", err)
	}
	if err := boardSchema.Validate(doc); err != nil {
		return nil, schemaError(err)
	}

	var b board.Board
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, cerr.NewError(cerr.InvalidArgument, "stored board does not match the board layout", err)
	}
	return b, nil
}

func schemaError(err error) error {
	e := cerr.NewError(cerr.InvalidArgument, "stored board does not match the board schema", err)
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return e
	}
	collectSchemaCauses(ve, e)
	return e
}

func collectSchemaCauses(ve *jsonschema.ValidationError, e *cerr.Error) {
	if len(ve.Causes) == 0 {
		loc := ve.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		e.AddDetailMessageWithCode(fmt.Sprintf("%s: %s", loc, ve.Message), "schema")
		return
	}
	for _, c := range ve.Causes {
		collectSchemaCauses(c, e)
	}
}
