package enum

import (
	"database/sql/driver"
	"fmt"
)

// ProjectType categorizes the kind of work a project covers.
type ProjectType string

const (
	ProjectTypeGraphics    ProjectType = "graphics"
	ProjectTypeSocialMedia ProjectType = "social_media"
	ProjectTypeWebsite     ProjectType = "website"
	ProjectTypeSoftware    ProjectType = "software"
	ProjectTypeOther       ProjectType = "other"
)

// Valid reports whether t is one of the closed set of project types.
func (t ProjectType) Valid() bool {
	switch t {
	case ProjectTypeGraphics, ProjectTypeSocialMedia, ProjectTypeWebsite,
		ProjectTypeSoftware, ProjectTypeOther:
		return true
	}
	return false
}

func (t ProjectType) String() string {
	return string(t)
}

func (t ProjectType) Value() (driver.Value, error) {
	return string(t), nil
}

func (t *ProjectType) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		*t = ProjectType(v)
	case []byte:
		*t = ProjectType(v)
	case nil:
		*t = ProjectTypeOther
	default:
		return fmt.Errorf("cannot scan %T into ProjectType", value)
	}
	return nil
}
