package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"artlease/internal/domain"
)

// GuardKind is the machine-checkable reason a rental request is not fulfillable.
type GuardKind string

const (
	GuardNotFound         GuardKind = "NotFound"
	GuardNotListed        GuardKind = "NotListed"
	GuardQuantityExceeded GuardKind = "QuantityExceeded"
	GuardDurationExceeded GuardKind = "DurationExceeded"
)

// GuardError reports why a (quantity, weeks) request against an artwork was
// refused. Always recoverable; the message is shown to the shopper as-is.
type GuardError struct {
	Kind        GuardKind
	ArtworkID   int64
	MaxQuantity int       // set for QuantityExceeded
	Until       time.Time // set for DurationExceeded
}

func (e *GuardError) Error() string {
	switch e.Kind {
	case GuardNotFound:
		return "this item is no longer available"
	case GuardNotListed:
		return "this item is not currently listed for rent"
	case GuardQuantityExceeded:
		return fmt.Sprintf("only %d of this item can be rented at once", e.MaxQuantity)
	case GuardDurationExceeded:
		return fmt.Sprintf("this item is only available until %s", e.Until.Format("2 Jan 2006"))
	}
	return "this item cannot be added to the cart"
}

// ConstraintSource supplies the live artwork state the guard validates against.
type ConstraintSource interface {
	Constraints(artworkID int64) (domain.ArtworkConstraints, error)
}

// AvailabilityGuard decides whether a rental request is fulfillable right now.
// Read-only; checks run in order (existence, status, quantity, duration) and
// the first failure wins.
type AvailabilityGuard struct {
	Arts ConstraintSource
}

func NewAvailabilityGuard(arts ConstraintSource) *AvailabilityGuard {
	return &AvailabilityGuard{Arts: arts}
}

// Check validates quantity and weeks against the artwork's current state.
// A zero start time means "starting today". Returns nil when fulfillable,
// a *GuardError otherwise; other errors are storage failures.
func (g *AvailabilityGuard) Check(artworkID int64, qty, weeks int, start time.Time) error {
	c, err := g.Arts.Constraints(artworkID)
	if errors.Is(err, sql.ErrNoRows) {
		return &GuardError{Kind: GuardNotFound, ArtworkID: artworkID}
	}
	if err != nil {
		return err
	}

	if c.Status != domain.StatusListed {
		return &GuardError{Kind: GuardNotListed, ArtworkID: artworkID}
	}
	if qty > c.MaxQuantity {
		return &GuardError{Kind: GuardQuantityExceeded, ArtworkID: artworkID, MaxQuantity: c.MaxQuantity}
	}
	if c.AvailableUntil != "" {
		until, perr := time.Parse("2006-01-02", c.AvailableUntil)
		if perr == nil {
			if start.IsZero() {
				start = time.Now()
			}
			day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
			// The rental may end exactly on the last available day.
			if day.AddDate(0, 0, 7*weeks).After(until) {
				return &GuardError{Kind: GuardDurationExceeded, ArtworkID: artworkID, Until: until}
			}
		}
	}
	return nil
}

// GuardKindOf extracts the machine-checkable kind, or "" for non-guard errors.
func GuardKindOf(err error) GuardKind {
	var ge *GuardError
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return ""
}
