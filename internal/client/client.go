// Package client provides typed access to the remote task service API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Amna-05/quadro/pkg/models"
)

// Service is the remote CRUD collaborator for tasks, categories and tags.
type Service interface {
	ListTasks(ctx context.Context, filter ListFilter) ([]models.Task, error)
	CreateTask(ctx context.Context, draft NewTask) (*models.Task, error)
	UpdateTask(ctx context.Context, id string, patch TaskPatch) (*models.Task, error)
	DeleteTask(ctx context.Context, id string) error
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListTags(ctx context.Context) ([]models.Tag, error)
}

// ListFilter narrows ListTasks server-side. Zero-value fields are omitted
// from the query string.
type ListFilter struct {
	Status     models.Status
	Quadrant   models.Quadrant
	CategoryID string
	Search     string
	DueBefore  *time.Time
	DueAfter   *time.Time
	SortBy     string
	SortOrder  string
	Limit      int
}

// NewTask is the payload for creating a task. The server derives nothing
// from it beyond what is sent; the quadrant is never part of the payload.
type NewTask struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Urgent      bool       `json:"is_urgent"`
	Important   bool       `json:"is_important"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CategoryID  string     `json:"category_id,omitempty"`
	TagIDs      []string   `json:"tag_ids,omitempty"`
}

// TaskPatch is a partial update. Only non-nil fields are serialized, so a
// reclassification sends exactly the two priority flags and a status change
// sends exactly the status.
type TaskPatch struct {
	Title       *string        `json:"title,omitempty"`
	Description *string        `json:"description,omitempty"`
	Status      *models.Status `json:"status,omitempty"`
	Urgent      *bool          `json:"is_urgent,omitempty"`
	Important   *bool          `json:"is_important,omitempty"`
	DueDate     *time.Time     `json:"due_date,omitempty"`
	CategoryID  *string        `json:"category_id,omitempty"`
	TagIDs      *[]string      `json:"tag_ids,omitempty"`
}

// APIError is a non-2xx response from the task service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("task service returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("task service returned status %d: %s", e.StatusCode, e.Message)
}

// httpService talks to the task service over its JSON API.
type httpService struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewService creates a Service for the API at baseURL. The token is sent as
// a Bearer credential on every request; pass "" for unauthenticated servers.
func NewService(baseURL, token string, timeout time.Duration) Service {
	return &httpService{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

// dataEnvelope matches the service's {"data": ...} response wrapper.
type dataEnvelope[T any] struct {
	Data T `json:"data"`
}

// errorEnvelope matches the service's {"error": {"message": ...}} wrapper.
type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (s *httpService) ListTasks(ctx context.Context, filter ListFilter) ([]models.Task, error) {
	query := url.Values{}
	if filter.Status != "" {
		query.Set("status", string(filter.Status))
	}
	if filter.Quadrant != "" {
		query.Set("quadrant", string(filter.Quadrant))
	}
	if filter.CategoryID != "" {
		query.Set("category_id", filter.CategoryID)
	}
	if filter.Search != "" {
		query.Set("search", filter.Search)
	}
	if filter.DueBefore != nil {
		query.Set("due_before", filter.DueBefore.Format(time.RFC3339))
	}
	if filter.DueAfter != nil {
		query.Set("due_after", filter.DueAfter.Format(time.RFC3339))
	}
	if filter.SortBy != "" {
		query.Set("sort_by", filter.SortBy)
	}
	if filter.SortOrder != "" {
		query.Set("sort_order", filter.SortOrder)
	}
	if filter.Limit > 0 {
		query.Set("limit", strconv.Itoa(filter.Limit))
	}

	var envelope dataEnvelope[[]models.Task]
	if err := s.do(ctx, http.MethodGet, "/api/v1/tasks", query, nil, &envelope); err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return envelope.Data, nil
}

func (s *httpService) CreateTask(ctx context.Context, draft NewTask) (*models.Task, error) {
	var envelope dataEnvelope[models.Task]
	if err := s.do(ctx, http.MethodPost, "/api/v1/tasks", nil, draft, &envelope); err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}
	return &envelope.Data, nil
}

func (s *httpService) UpdateTask(ctx context.Context, id string, patch TaskPatch) (*models.Task, error) {
	var envelope dataEnvelope[models.Task]
	if err := s.do(ctx, http.MethodPatch, "/api/v1/tasks/"+url.PathEscape(id), nil, patch, &envelope); err != nil {
		return nil, fmt.Errorf("updating task %s: %w", id, err)
	}
	return &envelope.Data, nil
}

func (s *httpService) DeleteTask(ctx context.Context, id string) error {
	if err := s.do(ctx, http.MethodDelete, "/api/v1/tasks/"+url.PathEscape(id), nil, nil, nil); err != nil {
		return fmt.Errorf("deleting task %s: %w", id, err)
	}
	return nil
}

func (s *httpService) ListCategories(ctx context.Context) ([]models.Category, error) {
	var envelope dataEnvelope[[]models.Category]
	if err := s.do(ctx, http.MethodGet, "/api/v1/categories", nil, nil, &envelope); err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return envelope.Data, nil
}

func (s *httpService) ListTags(ctx context.Context) ([]models.Tag, error) {
	var envelope dataEnvelope[[]models.Tag]
	if err := s.do(ctx, http.MethodGet, "/api/v1/tags", nil, nil, &envelope); err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	return envelope.Data, nil
}

// do sends one request and decodes the response into out when out is non-nil.
// Non-2xx responses become an *APIError carrying the server's message.
func (s *httpService) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := s.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return s.responseError(resp)
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

func (s *httpService) responseError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apiErr
	}
	var envelope errorEnvelope
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Message != "" {
		apiErr.Message = envelope.Error.Message
	} else if trimmed := strings.TrimSpace(string(raw)); trimmed != "" && len(trimmed) < 200 {
		apiErr.Message = trimmed
	}
	return apiErr
}
