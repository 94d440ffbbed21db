package usererrors

import (
	"net/http"

	"go-leave/internal/shared/apperror"
)

var (
	ErrInvalidUserID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid user id",
		http.StatusBadRequest,
	)
	ErrInvalidRole = apperror.New(
		apperror.CodeInvalidInput,
		"invalid role",
		http.StatusBadRequest,
	)
	ErrUserNotFound = apperror.New(
		apperror.CodeNotFound,
		"user not found",
		http.StatusNotFound,
	)
	ErrUserAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"username or email already in use",
		http.StatusConflict,
	)
	ErrCannotDeleteSelf = apperror.New(
		apperror.CodeInvalidState,
		"you cannot delete your own account",
		http.StatusBadRequest,
	)
)
