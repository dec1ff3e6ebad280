package demo

import (
	"fmt"

	"github.com/vango-dev/mvu/pkg/runtime"
	"github.com/vango-dev/mvu/pkg/transport"
	. "github.com/vango-dev/mvu/pkg/vdom"
)

// TodoMsg is a todo list command.
type TodoMsg interface{ todoMsg() }

type (
	// AddTask appends a new open task.
	AddTask struct{}

	// ToggleTask flips the done flag of task ID.
	ToggleTask struct{ ID int }

	// RemoveTask deletes task ID.
	RemoveTask struct{ ID int }

	// ClearDone deletes every finished task.
	ClearDone struct{}
)

func (AddTask) todoMsg()    {}
func (ToggleTask) todoMsg() {}
func (RemoveTask) todoMsg() {}
func (ClearDone) todoMsg()  {}

// Task is one todo item.
type Task struct {
	ID    int
	Title string
	Done  bool
}

// TodoState is the todo list state. It is treated as immutable: UpdateTodo
// always returns a fresh Tasks slice.
type TodoState struct {
	Tasks  []Task
	NextID int
}

// Todo returns the todo program.
func Todo() runtime.Program[TodoState, TodoMsg] {
	return runtime.Program[TodoState, TodoMsg]{
		Init:   TodoState{NextID: 1},
		Update: UpdateTodo,
		View:   TodoView,
	}
}

// UpdateTodo applies msg to s.
func UpdateTodo(s TodoState, msg TodoMsg) TodoState {
	switch m := msg.(type) {
	case AddTask:
		tasks := append(append([]Task(nil), s.Tasks...), Task{ID: s.NextID, Title: fmt.Sprintf("Task %d", s.NextID)})
		return TodoState{Tasks: tasks, NextID: s.NextID + 1}
	case ToggleTask:
		tasks := append([]Task(nil), s.Tasks...)
		for i := range tasks {
			if tasks[i].ID == m.ID {
				tasks[i].Done = !tasks[i].Done
			}
		}
		return TodoState{Tasks: tasks, NextID: s.NextID}
	case RemoveTask:
		return s.filter(func(t Task) bool { return t.ID != m.ID })
	case ClearDone:
		return s.filter(func(t Task) bool { return !t.Done })
	default:
		return s
	}
}

func (s TodoState) filter(keep func(Task) bool) TodoState {
	var tasks []Task
	for _, t := range s.Tasks {
		if keep(t) {
			tasks = append(tasks, t)
		}
	}
	return TodoState{Tasks: tasks, NextID: s.NextID}
}

// Remaining counts the open tasks.
func (s TodoState) Remaining() int {
	n := 0
	for _, t := range s.Tasks {
		if !t.Done {
			n++
		}
	}
	return n
}

// TodoView renders the task list. Rows are matched by position, so removing
// a task rewrites the rows after it.
func TodoView(s TodoState) *VNode {
	done := len(s.Tasks) - s.Remaining()
	return Div(Class("todo"),
		Header(
			Button(Class("add"), OnClick(AddTask{}), Text("add")),
			Textf("%d left", s.Remaining()),
		),
		Ul(Map(s.Tasks, func(_ int, t Task) *VNode {
			return Li(ClassIf(t.Done, "done"), Data("task", fmt.Sprint(t.ID)),
				Span(OnClick(ToggleTask{ID: t.ID}), Text(t.Title)),
				Button(Class("remove"), OnClick(RemoveTask{ID: t.ID}), AriaLabel("remove"), Text("x")),
			)
		})),
		If(done > 0, Footer(
			Button(Class("clear"), OnClick(ClearDone{}), Textf("clear %d done", done)),
		)),
	)
}

// TodoTypes registers the todo commands for serialization.
func TodoTypes() *transport.Types {
	return transport.NewTypes().
		MustRegister("todo.add", AddTask{}).
		MustRegister("todo.toggle", ToggleTask{}).
		MustRegister("todo.remove", RemoveTask{}).
		MustRegister("todo.clear_done", ClearDone{})
}
