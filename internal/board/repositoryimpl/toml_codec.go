package repositoryimpl

import (
	"bytes"

	"github.com/BurntSushi/toml"

	"github.com/kazz187/taskboard/internal/board"
	"github.com/kazz187/taskboard/pkg/cerr"
)

// TOMLCodec stores the board as an array of [[columns]] tables. Empty task
// lists and absent deadlines are omitted and restored on load.
type TOMLCodec struct{}

func (TOMLCodec) Format() string { return "toml" }

func (TOMLCodec) Marshal(b board.Board) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(boardDocument{Columns: b.Normalize()}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (TOMLCodec) Unmarshal(data []byte) (board.Board, error) {
	var doc boardDocument
	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, cerr.NewError(cerr.InvalidArgument, "stored board is not valid TOML", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, cerr.NewError(cerr.InvalidArgument, "stored board has unknown key "+undecoded[0].String(), nil)
	}
	return doc.Columns, nil
}
