package repositoryimpl

import (
	"gopkg.in/yaml.v3"

	"github.com/kazz187/taskboard/internal/board"
	"github.com/kazz187/taskboard/pkg/cerr"
)

// YAMLCodec stores the board under a "columns" key with snake_case fields.
type YAMLCodec struct{}

func (YAMLCodec) Format() string { return "yaml" }

func (YAMLCodec) Marshal(b board.Board) ([]byte, error) {
	return yaml.Marshal(boardDocument{Columns: b.Normalize()})
}

func (YAMLCodec) Unmarshal(data []byte) (board.Board, error) {
	var doc boardDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, cerr.NewError(cerr.InvalidArgument, "stored board is not valid YAML", err)
	}
	return doc.Columns, nil
}
