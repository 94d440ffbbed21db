package balanceerrors

import (
	"fmt"
	"net/http"

	"go-leave/internal/shared/apperror"
)

var (
	ErrInvalidUserID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid user id",
		http.StatusBadRequest,
	)
	ErrInvalidActorID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid actor id",
		http.StatusBadRequest,
	)
	ErrInvalidAmount = apperror.New(
		apperror.CodeInvalidInput,
		"amount must be positive",
		http.StatusBadRequest,
	)
	ErrInvalidTotalDays = apperror.New(
		apperror.CodeInvalidInput,
		"total_days must be zero or positive",
		http.StatusBadRequest,
	)
	ErrUserNotFound = apperror.New(
		apperror.CodeNotFound,
		"user not found",
		http.StatusNotFound,
	)
)

// InsufficientBalanceError carries both sides of a failed reservation so the
// HTTP layer can surface them verbatim ("Available: 3, Requested: 5").
type InsufficientBalanceError struct {
	Available int
	Requested int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient leave balance: available %d, requested %d", e.Available, e.Requested)
}

func (e *InsufficientBalanceError) ToApp() *apperror.AppError {
	return apperror.New(
		apperror.CodeInsufficientBalance,
		fmt.Sprintf("Available: %d, Requested: %d", e.Available, e.Requested),
		http.StatusUnprocessableEntity,
	)
}
