package service

import (
	"time"

	"github.com/rallyhq/rally-core/internal/apperr"
	"github.com/rallyhq/rally-core/internal/model"
)

// CheckRegistrationAllowed decides whether a new registration may be taken
// for the event given the current registered count. Callers short-circuit
// before this check when the profile already holds a registration.
func CheckRegistrationAllowed(event *model.Event, registeredCount int64, now time.Time) error {
	if !event.Date.After(now) {
		return apperr.Conflict("event has already started")
	}
	if event.ClotureBillets.Before(now) {
		return apperr.Conflict("ticket sales are closed")
	}
	if registeredCount >= event.NbPlaces {
		return apperr.Conflict("event is sold out")
	}
	return nil
}
