package board

import (
	"encoding/json"
	"log/slog"
	"strconv"

	"github.com/kazz187/taskboard/internal/eventbus"
)

// PublishChanges returns an Observer that forwards every commit to bus. The
// payload is the JSON-encoded board so subscribers can re-render without a
// second request.
func PublishChanges(bus *eventbus.Bus) Observer {
	return func(c Change) {
		payload, err := json.Marshal(c.Board.Normalize())
		if err != nil {
			slog.Error("failed to encode board change", "version", c.Version, "error", err)
			return
		}
		bus.PublishNew(string(c.Kind), c.ResourceID, c.Version, string(payload), map[string]string{
			"columns": strconv.Itoa(len(c.Board)),
			"tasks":   strconv.Itoa(c.Board.TaskCount()),
		})
	}
}
