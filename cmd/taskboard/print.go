package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/kazz187/taskboard/internal/board"
	"github.com/kazz187/taskboard/pkg/cerr"
)

var (
	columnColor   = color.New(color.FgCyan, color.Bold)
	idColor       = color.New(color.FgHiBlack)
	assigneeColor = color.New(color.FgGreen)
	overdueColor  = color.New(color.FgRed)
)

func printBoard(w io.Writer, b board.Board) {
	if len(b) == 0 {
		fmt.Fprintln(w, "no columns")
		return
	}
	for _, c := range b {
		columnColor.Fprintf(w, "%s", c.Name)
		idColor.Fprintf(w, " [%s] (%d)\n", c.ID, len(c.Tasks))
		printTasks(w, c.Tasks)
	}
}

func printTasks(w io.Writer, tasks []board.Task) {
	now := time.Now()
	for _, t := range tasks {
		fmt.Fprintf(w, "  - %s", t.Name)
		idColor.Fprintf(w, " [%s]", t.ID)
		if t.AssignedTo != "" {
			assigneeColor.Fprintf(w, " @%s", t.AssignedTo)
		}
		if t.Deadline != nil {
			due := " due " + t.Deadline.Local().Format(time.DateOnly)
			if t.Deadline.Before(now) {
				overdueColor.Fprint(w, due)
			} else {
				fmt.Fprint(w, due)
			}
		}
		fmt.Fprintln(w)
		if t.Description != "" {
			fmt.Fprintf(w, "      %s\n", t.Description)
		}
	}
}

// describe flattens validation violations into the error message.
func describe(err error) error {
	violations := cerr.Violations(err)
	if len(violations) == 0 {
		return err
	}
	msgs := make([]string, len(violations))
	for i, v := range violations {
		msgs[i] = v.GetMessage()
	}
	return errors.New(strings.Join(msgs, " "))
}
