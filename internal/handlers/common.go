package handlers

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/lab_management/internal/apperrors"
	"github.com/Skotchmaster/lab_management/internal/service"
)

type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

func (v *Validator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// httpError maps each failure kind to a distinct, stable message so clients
// can tell "pick another time" from "log in again" from "try again shortly".
func httpError(c echo.Context, err error) error {
	if conflict, ok := apperrors.AsConflict(err); ok {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":                "time slot is already booked",
			"conflicting_bookings": conflict.Bookings,
		})
	}
	switch {
	case errors.Is(err, apperrors.ErrInvalidInterval):
		return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrInvalidInterval.Error())
	case errors.Is(err, apperrors.ErrResourceNotFound):
		return echo.NewHTTPError(http.StatusNotFound, apperrors.ErrResourceNotFound.Error())
	case errors.Is(err, apperrors.ErrInvalidToken):
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token, please log in again")
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, apperrors.ErrAlreadyExists):
		return echo.NewHTTPError(http.StatusConflict, apperrors.ErrAlreadyExists.Error())
	case errors.Is(err, apperrors.ErrInvalidTransition):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, apperrors.ErrInvalidTransition.Error())
	case errors.Is(err, apperrors.ErrStorageUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "storage unavailable, try again shortly")
	case errors.Is(err, service.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
