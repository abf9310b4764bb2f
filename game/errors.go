package game

import (
	"fmt"

	"vitya-bot/apperr"
)

var (
	ErrCooldown            = apperr.User("cooldown has not elapsed")
	ErrUnknownBoost        = apperr.User("unknown boost")
	ErrBoostActive         = apperr.User("boost already active")
	ErrInsufficientRespect = apperr.User("not enough respect")
	ErrEventOver           = apperr.User("event is over")
	ErrAlreadyClaimed      = apperr.User("already participated")
)

// CooldownError rejects a hit and carries the seconds left until the next one.
type CooldownError struct {
	Remaining int64
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("cooldown has not elapsed: %ds remaining", e.Remaining)
}

func (e *CooldownError) Unwrap() error {
	return ErrCooldown
}
