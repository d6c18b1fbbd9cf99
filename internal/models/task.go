package models

// DefaultTaskStatus is stored when a task is created without a status.
const DefaultTaskStatus = "ToDo"

// Task is a unit of work inside a project.
type Task struct {
	ID          int64   `json:"id"`
	ProjectID   int64   `json:"project_id"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
	DueDate     *string `json:"dueDate"`
	Assignee    *string `json:"assignee"`
	Priority    *string `json:"priority"`
}
