package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

const (
	codeInvalid  = "FIELDKIT_COMMAND_INVALID"
	codeCanceled = "FIELDKIT_COMMAND_CANCELED"
	codeDeadline = "FIELDKIT_COMMAND_DEADLINE"
	codeFailed   = "FIELDKIT_COMMAND_FAILED"
)

// tag wraps err with the go-errors category matching the status it ended
// in. Errors already tagged by a document handler keep their category.
func tag(status TelemetryStatus, err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case status == TelemetryStatusRejected:
		return goerrors.Wrap(err, goerrors.CategoryValidation, "command message is invalid").WithTextCode(codeInvalid)
	case errors.Is(err, context.DeadlineExceeded):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command deadline exceeded").WithTextCode(codeDeadline)
	case errors.Is(err, context.Canceled):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command canceled").WithTextCode(codeCanceled)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command failed").WithTextCode(codeFailed)
	}
}

func statusOf(err error) TelemetryStatus {
	switch {
	case err == nil:
		return TelemetryStatusSuccess
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return TelemetryStatusContextError
	case goerrors.IsCategory(err, goerrors.CategoryValidation):
		return TelemetryStatusRejected
	default:
		return TelemetryStatusFailed
	}
}
