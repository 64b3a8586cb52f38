package categories

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrNotFound         = errors.New("category not found")
	ErrMarathonNotFound = errors.New("marathon not found")
)

// Name is the race distance. The original system only ever ran full and half
// marathons.
type Name string

const (
	NameFull Name = "FULL"
	NameHalf Name = "HALF"
)

type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyTZS Currency = "TZS"
)

type Category struct {
	ID         uuid.UUID
	Name       Name
	Price      float64
	Currency   Currency
	MarathonID uuid.UUID

	// OrganizerID is the organizer of the owning marathon, resolved by the
	// repository so ownership checks need no extra round trip.
	OrganizerID uuid.UUID
}

type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func ParseName(raw string) (Name, error) {
	switch Name(strings.ToUpper(strings.TrimSpace(raw))) {
	case NameFull:
		return NameFull, nil
	case NameHalf:
		return NameHalf, nil
	default:
		return "", FieldError{Field: "name", Message: "must be FULL or HALF"}
	}
}

func ParseCurrency(raw string) (Currency, error) {
	switch Currency(strings.ToUpper(strings.TrimSpace(raw))) {
	case CurrencyUSD:
		return CurrencyUSD, nil
	case CurrencyTZS:
		return CurrencyTZS, nil
	default:
		return "", FieldError{Field: "currency", Message: "must be USD or TZS"}
	}
}

type Filters struct {
	ID *uuid.UUID
}
