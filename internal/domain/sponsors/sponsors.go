package sponsors

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrNotFound         = errors.New("sponsor not found")
	ErrMarathonNotFound = errors.New("marathon not found")
)

type Sponsor struct {
	ID         uuid.UUID
	Name       string
	MarathonID uuid.UUID

	// OrganizerID is the organizer of the owning marathon, resolved by the
	// repository.
	OrganizerID uuid.UUID
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
