package tasks

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Status of a task
type Status string

const (
	StatusOpen       Status = "OPEN"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
)

// Task is the mapped task entity
type Task struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title       string    `gorm:"not null"`
	Description string
	Status      Status `gorm:"type:varchar(20);not null;default:OPEN"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BeforeCreate assigns an ID to new tasks that do not have one
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Status == "" {
		t.Status = StatusOpen
	}
	return nil
}

// Entities returns the mapped entity references registered with the ORM
func Entities() []any {
	return []any{&Task{}}
}
