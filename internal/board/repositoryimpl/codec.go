package repositoryimpl

import (
	"fmt"

	"github.com/kazz187/taskboard/internal/board"
)

// Codec converts a whole board to and from its stored bytes.
type Codec interface {
	Format() string
	Marshal(b board.Board) ([]byte, error)
	Unmarshal(data []byte) (board.Board, error)
}

// NewCodec returns the codec registered for format: "json", "yaml" or "toml".
func NewCodec(format string) (Codec, error) {
	switch format {
	case "", "json":
		return JSONCodec{}, nil
	case "yaml", "yml":
		return YAMLCodec{}, nil
	case "toml":
		return TOMLCodec{}, nil
	}
	return nil, fmt.Errorf("unknown board format %q", format)
}

// boardDocument is the table root used by formats that cannot encode a bare
// top-level array.
type boardDocument struct {
	Columns board.Board `yaml:"columns" toml:"columns"`
}
