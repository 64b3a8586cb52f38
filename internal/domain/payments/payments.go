package payments

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound         = errors.New("payment not found")
	ErrCategoryNotFound = errors.New("category not found")

	// ErrProtected is raised by the store layer when a delete targets a PAID
	// payment. The record must be transitioned off PAID externally first.
	ErrProtected = errors.New("cannot delete a paid payment")
)

type Status string

const (
	StatusPaid      Status = "PAID"
	StatusUnpaid    Status = "UNPAID"
	StatusCancelled Status = "CANCELLED"
)

func ParseStatus(raw string) (Status, error) {
	switch Status(strings.ToUpper(strings.TrimSpace(raw))) {
	case StatusPaid:
		return StatusPaid, nil
	case StatusUnpaid:
		return StatusUnpaid, nil
	case StatusCancelled:
		return StatusCancelled, nil
	default:
		return "", FieldError{Field: "status", Message: "must be PAID, UNPAID or CANCELLED"}
	}
}

type Payment struct {
	ID         uuid.UUID
	MarathonID uuid.UUID
	CategoryID uuid.UUID
	UserID     uuid.UUID
	Status     Status

	// ValidationDate is stamped by the external settlement process, never by
	// this service.
	ValidationDate *time.Time

	// OrganizerID is the organizer of the marathon being paid for, resolved
	// by the repository for ownership checks and organizer-scoped listings.
	OrganizerID uuid.UUID

	CreatedAt time.Time
	UpdatedAt time.Time
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
