package enum

import (
	"database/sql/driver"
	"fmt"
)

// ProjectStatus represents the status of a project.
type ProjectStatus string

const (
	ProjectStatusPending    ProjectStatus = "pending"
	ProjectStatusInProgress ProjectStatus = "in_progress"
	ProjectStatusCompleted  ProjectStatus = "completed"
	ProjectStatusOnHold     ProjectStatus = "on_hold"
	ProjectStatusCancelled  ProjectStatus = "cancelled"
)

// Valid reports whether s is one of the closed set of project statuses.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusPending, ProjectStatusInProgress, ProjectStatusCompleted,
		ProjectStatusOnHold, ProjectStatusCancelled:
		return true
	}
	return false
}

func (s ProjectStatus) String() string {
	return string(s)
}

func (s ProjectStatus) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *ProjectStatus) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		*s = ProjectStatus(v)
	case []byte:
		*s = ProjectStatus(v)
	case nil:
		*s = ProjectStatusPending
	default:
		return fmt.Errorf("cannot scan %T into ProjectStatus", value)
	}
	return nil
}
