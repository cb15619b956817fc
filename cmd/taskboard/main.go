package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kingpin/v2"

	"github.com/kazz187/taskboard/internal/config"
	"github.com/kazz187/taskboard/pkg/clog"
)

var (
	app = kingpin.New("taskboard", "Kanban board with drag-and-drop task ordering")

	serveCmd = app.Command("serve", "Serve the board over HTTP").Default()

	tuiCmd = app.Command("tui", "Open the board in the terminal")

	// Column commands
	columnCmd = app.Command("column", "Column management commands")

	columnListCmd = columnCmd.Command("list", "List columns and their tasks")

	columnAddCmd  = columnCmd.Command("add", "Add a column")
	columnAddName = columnAddCmd.Arg("name", "Column name").Required().String()

	columnRenameCmd  = columnCmd.Command("rename", "Rename a column")
	columnRenameID   = columnRenameCmd.Arg("column-id", "Column ID").Required().String()
	columnRenameName = columnRenameCmd.Arg("name", "New name").Required().String()

	columnDeleteCmd = columnCmd.Command("delete", "Delete a column and all of its tasks")
	columnDeleteID  = columnDeleteCmd.Arg("column-id", "Column ID").Required().String()

	// Task commands
	taskCmd = app.Command("task", "Task management commands")

	taskListCmd    = taskCmd.Command("list", "List the tasks of a column")
	taskListColumn = taskListCmd.Arg("column-id", "Column ID").Required().String()
	taskListOrder  = taskListCmd.Flag("order", "Sort by name").Default("manual").Enum("manual", "asc", "desc")

	taskAddCmd         = taskCmd.Command("add", "Add a task to the end of a column")
	taskAddColumn      = taskAddCmd.Arg("column-id", "Column ID").Required().String()
	taskAddName        = taskAddCmd.Arg("name", "Task name").Required().String()
	taskAddAssignee    = taskAddCmd.Flag("assignee", "Assigned user").Short('a').Required().String()
	taskAddDeadline    = taskAddCmd.Flag("deadline", "Deadline (YYYY-MM-DD or RFC 3339)").Short('d').Required().String()
	taskAddDescription = taskAddCmd.Flag("description", "Description").String()

	taskEditCmd            = taskCmd.Command("edit", "Edit a task")
	taskEditColumn         = taskEditCmd.Arg("column-id", "Column ID").Required().String()
	taskEditID             = taskEditCmd.Arg("task-id", "Task ID").Required().String()
	taskEditNameSet        bool
	taskEditName           = taskEditCmd.Flag("name", "New name").IsSetByUser(&taskEditNameSet).String()
	taskEditAssigneeSet    bool
	taskEditAssignee       = taskEditCmd.Flag("assignee", "New assignee").IsSetByUser(&taskEditAssigneeSet).String()
	taskEditDescriptionSet bool
	taskEditDescription    = taskEditCmd.Flag("description", "New description").IsSetByUser(&taskEditDescriptionSet).String()
	taskEditDeadline       = taskEditCmd.Flag("deadline", "New deadline (YYYY-MM-DD or RFC 3339)").String()

	taskDeleteCmd    = taskCmd.Command("delete", "Delete a task")
	taskDeleteColumn = taskDeleteCmd.Arg("column-id", "Column ID").Required().String()
	taskDeleteID     = taskDeleteCmd.Arg("task-id", "Task ID").Required().String()

	taskMoveCmd  = taskCmd.Command("move", "Drop a task onto another task or a column")
	taskMoveID   = taskMoveCmd.Arg("task-id", "Task being moved").Required().String()
	taskMoveOver = taskMoveCmd.Arg("over-id", "Task or column it is dropped on").Required().String()

	// Import / export
	exportCmd    = app.Command("export", "Write the board to a file or stdout")
	exportFormat = exportCmd.Flag("format", "Output format").Short('f').Default("json").Enum("json", "yaml", "toml")
	exportOutput = exportCmd.Flag("output", "Output file (default stdout)").Short('o').String()

	importCmd    = app.Command("import", "Replace the board with the contents of a file")
	importFormat = importCmd.Flag("format", "Input format (default from file extension)").Short('f').Enum("json", "yaml", "toml")
	importInput  = importCmd.Arg("file", "Input file").Required().ExistingFile()

	boardsCmd = app.Command("boards", "List the boards in the configured store")
	resetCmd  = app.Command("reset", "Delete the stored board")
)

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	env, err := config.LoadEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logOut := os.Stderr
	if command == tuiCmd.FullCommand() {
		// The terminal belongs to the TUI; keep logs out of it.
		f, err := os.OpenFile(filepath.Join(os.TempDir(), "taskboard-tui.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}
	slog.SetDefault(slog.New(clog.NewHandler(logOut, env.Env, env.SlogLevel())))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, env, command); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, env *config.Env, command string) error {
	switch command {
	case serveCmd.FullCommand():
		return runServe(ctx, env)
	case tuiCmd.FullCommand():
		return runTUI(ctx, env)
	}

	b, err := openBoard(ctx, env)
	if err != nil {
		return err
	}

	switch command {
	case columnListCmd.FullCommand():
		return b.listColumns(os.Stdout)
	case columnAddCmd.FullCommand():
		return b.addColumn(ctx, os.Stdout, *columnAddName)
	case columnRenameCmd.FullCommand():
		return b.renameColumn(ctx, *columnRenameID, *columnRenameName)
	case columnDeleteCmd.FullCommand():
		return b.deleteColumn(ctx, *columnDeleteID)
	case taskListCmd.FullCommand():
		return b.listTasks(os.Stdout, *taskListColumn, *taskListOrder)
	case taskAddCmd.FullCommand():
		return b.addTask(ctx, os.Stdout, *taskAddColumn, *taskAddName, *taskAddAssignee, *taskAddDescription, *taskAddDeadline)
	case taskEditCmd.FullCommand():
		return b.editTask(ctx, *taskEditColumn, *taskEditID, taskEditFlags())
	case taskDeleteCmd.FullCommand():
		return b.deleteTask(ctx, *taskDeleteColumn, *taskDeleteID)
	case taskMoveCmd.FullCommand():
		return b.moveTask(ctx, *taskMoveID, *taskMoveOver)
	case exportCmd.FullCommand():
		return b.export(*exportFormat, *exportOutput)
	case importCmd.FullCommand():
		return b.importFile(ctx, *importInput, *importFormat)
	case boardsCmd.FullCommand():
		return b.listBoards(ctx, os.Stdout)
	case resetCmd.FullCommand():
		return b.reset(ctx, os.Stdout)
	}
	return fmt.Errorf("unknown command %q", command)
}

func taskEditFlags() editFlags {
	f := editFlags{deadline: *taskEditDeadline}
	if taskEditNameSet {
		f.name = taskEditName
	}
	if taskEditAssigneeSet {
		f.assignee = taskEditAssignee
	}
	if taskEditDescriptionSet {
		f.description = taskEditDescription
	}
	return f
}
