package board

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kazz187/taskboard/internal/eventbus"
	"github.com/kazz187/taskboard/internal/form"
	"github.com/kazz187/taskboard/pkg/cerr"
	"github.com/kazz187/taskboard/pkg/clog"
)

// Server exposes the manager over JSON HTTP. Handlers report results through
// cerr.SetJSONResponse, so they must run behind cerr.NewJSONResponseChiMiddleware.
type Server struct {
	manager  *Manager
	dragger  *Dragger
	forms    *form.Validator
	eventBus *eventbus.Bus
}

func NewServer(manager *Manager, forms *form.Validator, eventBus *eventbus.Bus) *Server {
	return &Server{
		manager:  manager,
		dragger:  NewDragger(manager),
		forms:    forms,
		eventBus: eventBus,
	}
}

// Routes registers the JSON endpoints.
func (s *Server) Routes(r chi.Router) {
	r.Get("/columns", s.listColumns)
	r.Post("/columns", s.createColumn)
	r.Route("/columns/{columnID}", func(r chi.Router) {
		r.Patch("/", s.renameColumn)
		r.Delete("/", s.deleteColumn)
		r.Get("/tasks", s.listTasks)
		r.Post("/tasks", s.createTask)
		r.Patch("/tasks/{taskID}", s.editTask)
		r.Delete("/tasks/{taskID}", s.deleteTask)
	})
	r.Post("/drag/start", s.dragStart)
	r.Post("/drag/end", s.dragEnd)
}

type BoardResponse struct {
	Version uint64 `json:"version"`
	Columns Board  `json:"columns"`
}

type TasksResponse struct {
	ColumnID string    `json:"columnId"`
	Order    TaskOrder `json:"order"`
	Tasks    []Task    `json:"tasks"`
}

type DragStartRequest struct {
	ActiveID string `json:"activeId"`
}

// DragEndRequest carries either a resolved OverID or the geometry to resolve
// it from. An empty OverID with no geometry is a drop outside every target.
type DragEndRequest struct {
	ActiveID   string       `json:"activeId"`
	OverID     string       `json:"overId,omitempty"`
	ActiveRect *Rect        `json:"activeRect,omitempty"`
	Targets    []DropTarget `json:"targets,omitempty"`
}

type DragEndResponse struct {
	Moved   bool   `json:"moved"`
	Version uint64 `json:"version"`
	Columns Board  `json:"columns"`
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return cerr.NewError(cerr.InvalidArgument, "request body is required", err)
		}
		return cerr.NewError(cerr.InvalidArgument, "invalid request body", err)
	}
	return nil
}

func columnNotFound(columnID string) error {
	return cerr.NewError(cerr.NotFound, fmt.Sprintf("column %q not found", columnID), nil)
}

func taskNotFound(columnID, taskID string) error {
	return cerr.NewError(cerr.NotFound, fmt.Sprintf("task %q not found in column %q", taskID, columnID), nil)
}

func (s *Server) snapshot() BoardResponse {
	b, v := s.manager.Snapshot()
	return BoardResponse{Version: v, Columns: b}
}

func (s *Server) listColumns(w http.ResponseWriter, r *http.Request) {
	cerr.SetJSONResponse(r.Context(), s.snapshot())
}

func (s *Server) createColumn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var in form.ColumnInput
	if err := decodeJSON(r, &in); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	name, err := s.forms.Column(in)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	column, ok := s.manager.NewColumn(name)
	if !ok {
		cerr.SetNewJSONError(ctx, cerr.AlreadyExists, "column id already in use", nil)
		return
	}
	clog.AddAttribute(ctx, "column_id", column.ID)
	cerr.SetJSONResponseWithStatus(ctx, http.StatusCreated, column)
}

func (s *Server) renameColumn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	columnID := chi.URLParam(r, "columnID")
	clog.AddAttribute(ctx, "column_id", columnID)

	var in form.ColumnInput
	if err := decodeJSON(r, &in); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	name, err := s.forms.Column(in)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if _, ok := s.manager.Column(columnID); !ok {
		cerr.SetJSONError(ctx, columnNotFound(columnID))
		return
	}
	s.manager.RenameColumn(columnID, name)
	column, ok := s.manager.Column(columnID)
	if !ok {
		cerr.SetJSONError(ctx, columnNotFound(columnID))
		return
	}
	cerr.SetJSONResponse(ctx, column)
}

func (s *Server) deleteColumn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	columnID := chi.URLParam(r, "columnID")
	clog.AddAttribute(ctx, "column_id", columnID)
	if !s.manager.DeleteColumn(columnID) {
		cerr.SetJSONError(ctx, columnNotFound(columnID))
	}
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	columnID := chi.URLParam(r, "columnID")
	clog.AddAttribute(ctx, "column_id", columnID)

	order, ok := ParseTaskOrder(r.URL.Query().Get("order"))
	if !ok {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "order must be asc or desc", nil)
		return
	}
	column, ok := s.manager.Column(columnID)
	if !ok {
		cerr.SetJSONError(ctx, columnNotFound(columnID))
		return
	}
	cerr.SetJSONResponse(ctx, TasksResponse{ColumnID: columnID, Order: order, Tasks: column.SortedTasks(order)})
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	columnID := chi.URLParam(r, "columnID")
	clog.AddAttribute(ctx, "column_id", columnID)

	var in form.TaskInput
	if err := decodeJSON(r, &in); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	data, err := s.forms.Task(in)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	task, ok := s.manager.AddTask(columnID, TaskData(data))
	if !ok {
		cerr.SetJSONError(ctx, columnNotFound(columnID))
		return
	}
	clog.AddAttribute(ctx, "task_id", task.ID)
	cerr.SetJSONResponseWithStatus(ctx, http.StatusCreated, task)
}

func (s *Server) editTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	columnID, taskID := chi.URLParam(r, "columnID"), chi.URLParam(r, "taskID")
	clog.AddAttributes(ctx, map[string]any{"column_id": columnID, "task_id": taskID})

	var in form.TaskPatch
	if err := decodeJSON(r, &in); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	patch, err := s.forms.TaskPatch(in)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if !s.manager.EditTask(columnID, taskID, TaskPatch(patch)) {
		cerr.SetJSONError(ctx, taskNotFound(columnID, taskID))
		return
	}
	task, _, ok := s.manager.FindTask(taskID)
	if !ok {
		cerr.SetJSONError(ctx, taskNotFound(columnID, taskID))
		return
	}
	cerr.SetJSONResponse(ctx, task)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	columnID, taskID := chi.URLParam(r, "columnID"), chi.URLParam(r, "taskID")
	clog.AddAttributes(ctx, map[string]any{"column_id": columnID, "task_id": taskID})
	if !s.manager.DeleteTask(columnID, taskID) {
		cerr.SetJSONError(ctx, taskNotFound(columnID, taskID))
	}
}

func (s *Server) dragStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var in DragStartRequest
	if err := decodeJSON(r, &in); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	clog.AddAttribute(ctx, "task_id", in.ActiveID)
	task, ok := s.dragger.Start(in.ActiveID)
	if !ok {
		cerr.SetNewJSONError(ctx, cerr.NotFound, fmt.Sprintf("task %q not found", in.ActiveID), nil)
		return
	}
	cerr.SetJSONResponse(ctx, task)
}

// dragEnd never fails on unresolved ids: a drop that resolves to nothing is a
// successful no-op reported as moved=false.
func (s *Server) dragEnd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var in DragEndRequest
	if err := decodeJSON(r, &in); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	clog.AddAttribute(ctx, "task_id", in.ActiveID)

	var moved bool
	if in.OverID == "" && in.ActiveRect != nil {
		moved = s.dragger.EndAt(in.ActiveID, *in.ActiveRect, in.Targets)
	} else {
		moved = s.dragger.End(in.ActiveID, in.OverID)
	}
	snap := s.snapshot()
	cerr.SetJSONResponse(ctx, DragEndResponse{Moved: moved, Version: snap.Version, Columns: snap.Columns})
}

// StreamEvents sends the current board and then every change as Server-Sent
// Events until the client goes away. It writes the response itself and must
// not run behind the JSON response middleware. The optional "types" query
// parameter is a comma-separated list of change kinds to forward.
func (s *Server) StreamEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subID, ch := s.eventBus.Subscribe(64)
	defer s.eventBus.Unsubscribe(subID)
	slog.DebugContext(ctx, "event stream opened", "subscribers", s.eventBus.SubscriberCount())

	typeFilter := make(map[string]struct{})
	for _, t := range strings.Split(r.URL.Query().Get("types"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			typeFilter[t] = struct{}{}
		}
	}

	rc := http.NewResponseController(w)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	snap := s.snapshot()
	payload, err := json.Marshal(snap.Columns)
	if err != nil {
		slog.ErrorContext(ctx, "failed to encode board snapshot", "error", err)
		return
	}
	if err := writeSSE(w, rc, &eventbus.Event{Type: "board.snapshot", Version: snap.Version, Payload: string(payload)}); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			// Already covered by the snapshot.
			if event.Version <= snap.Version {
				continue
			}
			if len(typeFilter) > 0 {
				if _, match := typeFilter[event.Type]; !match {
					continue
				}
			}
			if err := writeSSE(w, rc, event); err != nil {
				slog.DebugContext(ctx, "event stream closed", "error", err)
				return
			}
		}
	}
}

func writeSSE(w io.Writer, rc *http.ResponseController, event *eventbus.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if event.ID != "" {
		if _, err := fmt.Fprintf(w, "id: %s\n", event.ID); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data); err != nil {
		return err
	}
	return rc.Flush()
}
