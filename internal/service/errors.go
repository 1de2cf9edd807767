package service

import (
	"context"
	"errors"
	"fmt"

	"connectrpc.com/connect"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/mmynk/groupledger/internal/calculator"
	"github.com/mmynk/groupledger/internal/middleware"
	"github.com/mmynk/groupledger/internal/storage"
)

var (
	errUnauthenticated = errors.New("caller is not authenticated")
	errNotParticipant  = errors.New("caller is not part of this group")
	errNotOwner        = errors.New("only the group owner can do this")
	errInvalidArgument = errors.New("invalid argument")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateRequest runs the struct tags of a request message.
func validateRequest(msg any) error {
	if err := validate.Struct(msg); err != nil {
		return fmt.Errorf("%w: %w", errInvalidArgument, err)
	}
	return nil
}

// requirePositive rejects zero and negative money amounts.
func requirePositive(field string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: %s must be greater than zero", calculator.ErrNegativeAmount, field)
	}
	if !calculator.IsWholeCents(amount) {
		return fmt.Errorf("%w: %s has more than two decimal places", calculator.ErrSubCentAmount, field)
	}
	return nil
}

// callerID returns the authenticated user from the request context.
func callerID(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", errUnauthenticated
	}
	return userID, nil
}

// toConnectError maps domain and storage errors to Connect codes.
func toConnectError(err error) error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return err
	}

	var validationErrs validator.ValidationErrors
	switch {
	case errors.Is(err, errUnauthenticated):
		return connect.NewError(connect.CodeUnauthenticated, err)
	case errors.Is(err, errNotParticipant), errors.Is(err, errNotOwner):
		return connect.NewError(connect.CodePermissionDenied, err)
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, storage.ErrConflict):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, errInvalidArgument),
		errors.As(err, &validationErrs),
		errors.Is(err, calculator.ErrInvalidSplit),
		errors.Is(err, calculator.ErrMemberNotFound),
		errors.Is(err, calculator.ErrNegativeAmount),
		errors.Is(err, calculator.ErrSubCentAmount),
		errors.Is(err, calculator.ErrInvalidRate),
		errors.Is(err, calculator.ErrSameUser):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
