// Package mcp exposes the quadro task machinery over the Model Context
// Protocol: reading the board and matrix, creating tasks, and pushing
// mutations through the optimistic coordinator.
package mcp

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Amna-05/quadro/internal/client"
	"github.com/Amna-05/quadro/internal/mutation"
	"github.com/Amna-05/quadro/internal/projection"
	"github.com/Amna-05/quadro/internal/store"
	"github.com/Amna-05/quadro/pkg/models"
)

// Refresh reloads the collection from the task service before a tool reads
// or mutates it.
type Refresh func(ctx context.Context) error

// Deps carries the shared machinery the tools operate on. Refresh may be
// nil when the collection is maintained elsewhere, Events may be nil when
// event logging is not wanted, and Now defaults to time.Now.
type Deps struct {
	Service     client.Service
	Collection  store.Collection
	Engine      *projection.Engine
	Coordinator *mutation.Coordinator
	Refresh     Refresh
	Events      mutation.EventLogger
	Now         func() time.Time
}

// Server exposes quadro as MCP tools over stdio.
type Server struct {
	server *gomcp.Server
	deps   Deps

	// Tool calls may arrive concurrently; the store and coordinator expect
	// one caller at a time.
	mu sync.Mutex
}

// NewServer creates an MCP server with the given dependencies.
func NewServer(deps Deps, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{deps: deps}
	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "quadro", Version: version},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until the client
// disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

func (s *Server) now() time.Time {
	if s.deps.Now != nil {
		return s.deps.Now()
	}
	return time.Now()
}

func (s *Server) refresh(ctx context.Context) error {
	if s.deps.Refresh == nil {
		return nil
	}
	return s.deps.Refresh(ctx)
}

// --- Tool input/output types ---

type taskOutput struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Status      string   `json:"status"`
	Quadrant    string   `json:"quadrant"`
	Urgent      bool     `json:"is_urgent"`
	Important   bool     `json:"is_important"`
	DueDate     string   `json:"due_date,omitempty"`
	CategoryID  string   `json:"category_id,omitempty"`
	TagIDs      []string `json:"tag_ids,omitempty"`
	CompletedAt string   `json:"completed_at,omitempty"`
	Created     string   `json:"created"`
	Updated     string   `json:"updated"`
}

type listTasksInput struct {
	Status   string `json:"status,omitempty" jsonschema:"filter by status (todo, in_progress, done)"`
	Quadrant string `json:"quadrant,omitempty" jsonschema:"filter by quadrant (do-first, schedule, delegate, eliminate)"`
	Search   string `json:"search,omitempty" jsonschema:"case-insensitive title and description search"`
}

type listTasksOutput struct {
	Tasks []taskOutput `json:"tasks"`
	Count int          `json:"count"`
}

type groupOutput struct {
	Key   string       `json:"key"`
	Label string       `json:"label"`
	Count int          `json:"count"`
	Tasks []taskOutput `json:"tasks"`
}

type getBoardInput struct{}

type getBoardOutput struct {
	Columns []groupOutput `json:"columns"`
}

type getMatrixInput struct{}

type getMatrixOutput struct {
	Cells []groupOutput `json:"cells"`
}

type createTaskInput struct {
	Title       string `json:"title" jsonschema:"required,the task title"`
	Description string `json:"description,omitempty" jsonschema:"optional longer description"`
	Urgent      bool   `json:"is_urgent,omitempty" jsonschema:"whether the task is urgent"`
	Important   bool   `json:"is_important,omitempty" jsonschema:"whether the task is important"`
	DueDate     string `json:"due_date,omitempty" jsonschema:"due date in RFC 3339 form (e.g. 2025-07-01T17:00:00Z)"`
	CategoryID  string `json:"category_id,omitempty" jsonschema:"category id"`
}

type completeTaskInput struct {
	TaskID string `json:"task_id" jsonschema:"required,the task id"`
	Undo   bool   `json:"undo,omitempty" jsonschema:"reopen a completed task instead of completing it"`
}

type reclassifyTaskInput struct {
	TaskID   string `json:"task_id" jsonschema:"required,the task id"`
	Quadrant string `json:"quadrant" jsonschema:"required,target quadrant (do-first, schedule, delegate, eliminate)"`
}

type changeStatusInput struct {
	TaskID string `json:"task_id" jsonschema:"required,the task id"`
	Status string `json:"status" jsonschema:"required,target status (todo, in_progress, done)"`
}

type deleteTaskInput struct {
	TaskID string `json:"task_id" jsonschema:"required,the task id"`
}

type mutationOutput struct {
	Message string `json:"message"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_tasks",
		Description: "List tasks with optional status, quadrant, and text filters, ranked by Eisenhower priority.",
	}, s.handleListTasks)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_board",
		Description: "Get the kanban board: one column per status (todo, in_progress, done) with its tasks.",
	}, s.handleGetBoard)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_matrix",
		Description: "Get the Eisenhower matrix: the four quadrant cells (Do First, Schedule, Delegate, Eliminate) with their open tasks.",
	}, s.handleGetMatrix)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "create_task",
		Description: "Create a task. Urgency and importance place it in its Eisenhower quadrant.",
	}, s.handleCreateTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "complete_task",
		Description: "Mark a task done, or reopen it with undo. The change is optimistic and rolls back if the service rejects it.",
	}, s.handleCompleteTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "reclassify_task",
		Description: "Move a task to another quadrant by rewriting only its urgency and importance flags.",
	}, s.handleReclassifyTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "change_status",
		Description: "Move a task to another status. Only the status field is sent.",
	}, s.handleChangeStatus)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "delete_task",
		Description: "Delete a task.",
	}, s.handleDeleteTask)
}

// --- Tool handlers ---

func (s *Server) handleListTasks(ctx context.Context, _ *gomcp.CallToolRequest, input listTasksInput) (*gomcp.CallToolResult, listTasksOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refresh(ctx); err != nil {
		return errorResult(fmt.Sprintf("loading tasks: %s", err)), listTasksOutput{}, nil
	}

	var status models.Status
	if input.Status != "" {
		status = models.Status(strings.ToLower(input.Status))
		if !models.ValidStatus(status) {
			return errorResult(fmt.Sprintf("invalid status %q: must be one of todo, in_progress, done", input.Status)), listTasksOutput{}, nil
		}
	}

	var quadrant models.Quadrant
	if input.Quadrant != "" {
		q, err := models.ParseQuadrant(strings.ToLower(input.Quadrant))
		if err != nil {
			return errorResult(err.Error()), listTasksOutput{}, nil
		}
		quadrant = q
	}

	needle := strings.ToLower(strings.TrimSpace(input.Search))
	spec := projection.Spec{
		GroupBy: projection.GroupByNone,
		SortBy:  projection.SortByPriority,
		Filter: func(t models.Task) bool {
			if status != "" && t.Status != status {
				return false
			}
			if quadrant != "" && t.Quadrant() != quadrant {
				return false
			}
			if needle != "" &&
				!strings.Contains(strings.ToLower(t.Title), needle) &&
				!strings.Contains(strings.ToLower(t.Description), needle) {
				return false
			}
			return true
		},
	}
	tasks := s.deps.Engine.Project(s.deps.Collection.Snapshot(), spec, s.now())[0].Tasks

	out := listTasksOutput{Tasks: make([]taskOutput, len(tasks)), Count: len(tasks)}
	for i, t := range tasks {
		out.Tasks[i] = taskToOutput(t)
	}
	return nil, out, nil
}

func (s *Server) handleGetBoard(ctx context.Context, _ *gomcp.CallToolRequest, _ getBoardInput) (*gomcp.CallToolResult, getBoardOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refresh(ctx); err != nil {
		return errorResult(fmt.Sprintf("loading tasks: %s", err)), getBoardOutput{}, nil
	}

	spec := projection.Spec{GroupBy: projection.GroupByStatus, SortBy: projection.SortByPriority}
	groups := s.deps.Engine.Project(s.deps.Collection.Snapshot(), spec, s.now())

	out := getBoardOutput{Columns: make([]groupOutput, len(groups))}
	for i, g := range groups {
		out.Columns[i] = groupToOutput(g)
	}
	return nil, out, nil
}

func (s *Server) handleGetMatrix(ctx context.Context, _ *gomcp.CallToolRequest, _ getMatrixInput) (*gomcp.CallToolResult, getMatrixOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refresh(ctx); err != nil {
		return errorResult(fmt.Sprintf("loading tasks: %s", err)), getMatrixOutput{}, nil
	}

	spec := projection.Spec{
		GroupBy: projection.GroupByQuadrant,
		SortBy:  projection.SortByPriority,
		Filter:  func(t models.Task) bool { return t.Status != models.StatusDone },
	}
	groups := s.deps.Engine.Project(s.deps.Collection.Snapshot(), spec, s.now())

	out := getMatrixOutput{Cells: make([]groupOutput, len(groups))}
	for i, g := range groups {
		out.Cells[i] = groupToOutput(g)
	}
	return nil, out, nil
}

func (s *Server) handleCreateTask(ctx context.Context, _ *gomcp.CallToolRequest, input createTaskInput) (*gomcp.CallToolResult, taskOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return errorResult("title is required"), taskOutput{}, nil
	}

	draft := client.NewTask{
		Title:       title,
		Description: input.Description,
		Urgent:      input.Urgent,
		Important:   input.Important,
		CategoryID:  input.CategoryID,
	}
	if input.DueDate != "" {
		due, err := time.Parse(time.RFC3339, input.DueDate)
		if err != nil {
			return errorResult(fmt.Sprintf("invalid due_date %q: use RFC 3339 form", input.DueDate)), taskOutput{}, nil
		}
		draft.DueDate = &due
	}

	task, err := s.deps.Service.CreateTask(ctx, draft)
	if err != nil {
		return errorResult(fmt.Sprintf("creating task: %s", err)), taskOutput{}, nil
	}

	s.deps.Collection.Upsert(*task)
	if s.deps.Events != nil {
		_ = s.deps.Events.LogEvent("task.created", map[string]any{
			"task_id":  task.ID,
			"title":    task.Title,
			"quadrant": string(task.Quadrant()),
		})
	}
	return nil, taskToOutput(*task), nil
}

func (s *Server) handleCompleteTask(ctx context.Context, _ *gomcp.CallToolRequest, input completeTaskInput) (*gomcp.CallToolResult, mutationOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, errRes := s.lookupTask(ctx, input.TaskID)
	if errRes != nil {
		return errRes, mutationOutput{}, nil
	}

	kind := mutation.CommandComplete
	verb := "completed"
	if input.Undo {
		kind = mutation.CommandUncomplete
		verb = "reopened"
	}

	if errRes := s.runMutation(ctx, mutation.Command{Kind: kind, TaskID: task.ID}); errRes != nil {
		return errRes, mutationOutput{}, nil
	}
	return nil, mutationOutput{Message: fmt.Sprintf("task %q %s", task.Title, verb)}, nil
}

func (s *Server) handleReclassifyTask(ctx context.Context, _ *gomcp.CallToolRequest, input reclassifyTaskInput) (*gomcp.CallToolResult, mutationOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, errRes := s.lookupTask(ctx, input.TaskID)
	if errRes != nil {
		return errRes, mutationOutput{}, nil
	}

	quadrant, err := models.ParseQuadrant(strings.ToLower(input.Quadrant))
	if err != nil {
		return errorResult(err.Error()), mutationOutput{}, nil
	}
	if task.Quadrant() == quadrant {
		return nil, mutationOutput{Message: fmt.Sprintf("task %q is already in %s", task.Title, quadrant.Label())}, nil
	}

	urgent, important := quadrant.Attributes()
	cmd := mutation.Command{Kind: mutation.CommandReclassify, TaskID: task.ID, Urgent: urgent, Important: important}
	if errRes := s.runMutation(ctx, cmd); errRes != nil {
		return errRes, mutationOutput{}, nil
	}
	return nil, mutationOutput{Message: fmt.Sprintf("task %q moved to %s", task.Title, quadrant.Label())}, nil
}

func (s *Server) handleChangeStatus(ctx context.Context, _ *gomcp.CallToolRequest, input changeStatusInput) (*gomcp.CallToolResult, mutationOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, errRes := s.lookupTask(ctx, input.TaskID)
	if errRes != nil {
		return errRes, mutationOutput{}, nil
	}

	status := models.Status(strings.ToLower(input.Status))
	if !models.ValidStatus(status) {
		return errorResult(fmt.Sprintf("invalid status %q: must be one of todo, in_progress, done", input.Status)), mutationOutput{}, nil
	}
	if task.Status == status {
		return nil, mutationOutput{Message: fmt.Sprintf("task %q is already in %s", task.Title, status.Label())}, nil
	}

	cmd := mutation.Command{Kind: mutation.CommandStatusChange, TaskID: task.ID, Status: status}
	if errRes := s.runMutation(ctx, cmd); errRes != nil {
		return errRes, mutationOutput{}, nil
	}
	return nil, mutationOutput{Message: fmt.Sprintf("task %q moved to %s", task.Title, status.Label())}, nil
}

func (s *Server) handleDeleteTask(ctx context.Context, _ *gomcp.CallToolRequest, input deleteTaskInput) (*gomcp.CallToolResult, mutationOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, errRes := s.lookupTask(ctx, input.TaskID)
	if errRes != nil {
		return errRes, mutationOutput{}, nil
	}

	if errRes := s.runMutation(ctx, mutation.Command{Kind: mutation.CommandDelete, TaskID: task.ID}); errRes != nil {
		return errRes, mutationOutput{}, nil
	}
	return nil, mutationOutput{Message: fmt.Sprintf("task %q deleted", task.Title)}, nil
}

// --- Helpers ---

// lookupTask refreshes the collection and resolves an id to its effective
// record. The second return is a ready error result when lookup failed.
func (s *Server) lookupTask(ctx context.Context, id string) (models.Task, *gomcp.CallToolResult) {
	if id == "" {
		return models.Task{}, errorResult("task_id is required")
	}
	if err := s.refresh(ctx); err != nil {
		return models.Task{}, errorResult(fmt.Sprintf("loading tasks: %s", err))
	}
	task, ok := s.deps.Collection.Effective(id)
	if !ok {
		return models.Task{}, errorResult(fmt.Sprintf("no task with id %q", id))
	}
	return task, nil
}

// runMutation pushes one command through the coordinator, mapping a
// rollback onto an error result carrying the rollback notice.
func (s *Server) runMutation(ctx context.Context, cmd mutation.Command) *gomcp.CallToolResult {
	res, err := s.deps.Coordinator.Run(ctx, cmd)
	if err != nil {
		return errorResult(err.Error())
	}
	if !res.Committed {
		return errorResult(res.Notice)
	}
	return nil
}

func taskToOutput(t models.Task) taskOutput {
	out := taskOutput{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Quadrant:    string(t.Quadrant()),
		Urgent:      t.Urgent,
		Important:   t.Important,
		CategoryID:  t.CategoryID,
		TagIDs:      t.TagIDs,
		Created:     t.CreatedAt.Format(time.RFC3339),
		Updated:     t.UpdatedAt.Format(time.RFC3339),
	}
	if t.DueDate != nil {
		out.DueDate = t.DueDate.Format(time.RFC3339)
	}
	if t.CompletedAt != nil {
		out.CompletedAt = t.CompletedAt.Format(time.RFC3339)
	}
	return out
}

func groupToOutput(g projection.Group) groupOutput {
	out := groupOutput{
		Key:   g.Key,
		Label: g.Label,
		Count: len(g.Tasks),
		Tasks: make([]taskOutput, len(g.Tasks)),
	}
	for i, t := range g.Tasks {
		out.Tasks[i] = taskToOutput(t)
	}
	return out
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}
