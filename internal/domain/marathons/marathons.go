package marathons

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kimbia-events/server/internal/domain/categories"
	"github.com/kimbia-events/server/internal/domain/sponsors"
)

var ErrNotFound = errors.New("marathon not found")

type Marathon struct {
	ID          uuid.UUID
	Name        string
	Theme       *string
	OrganizerID uuid.UUID
	StartDate   time.Time
	EndDate     time.Time

	// Organizer is a display summary of the owning user, resolved on reads.
	Organizer OrganizerSummary

	Categories []categories.Category
	Sponsors   []sponsors.Sponsor
}

type OrganizerSummary struct {
	ID       uuid.UUID
	Username string
	FullName string
}

type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

type Filters struct {
	ID *uuid.UUID
}
