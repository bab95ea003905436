package services

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/abrezinsky/aesops/internal/errors"
	"github.com/abrezinsky/aesops/internal/repository"
)

// Service errors
var (
	ErrTournamentStarted    = &ServiceError{Message: "tournament has already started"}
	ErrTournamentNotStarted = &ServiceError{Message: "tournament has not started"}
	ErrInvalidScore         = &ServiceError{Message: "scores must be between 0 and 3"}
	ErrInvalidOutcome       = &ServiceError{Message: "outcome must be corp_win, runner_win or draw"}
	ErrNameRequired         = &ServiceError{Message: "name is required"}
	ErrTitleRequired        = &ServiceError{Message: "title is required"}
	ErrTooFewParticipants   = &ServiceError{Message: "at least two active participants are required"}
	ErrBaseURLNotConfigured = &ServiceError{Message: "base_url not configured"}
)

// ServiceError represents a service-level error
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// IncompleteResultsError is returned when closing a round that still has
// unreported tables.
type IncompleteResultsError struct {
	Round  int
	Tables []int
}

func (e *IncompleteResultsError) Error() string {
	tables := make([]string, len(e.Tables))
	for i, t := range e.Tables {
		tables[i] = fmt.Sprint(t)
	}
	return fmt.Sprintf("round %d has unreported tables: %s", e.Round, strings.Join(tables, ", "))
}

// fromRepo maps repository sentinels to application errors. what names the
// missing entity in the not-found message.
func fromRepo(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, repository.ErrNotFound):
		return errors.NotFoundf("%s not found", what)
	case stderrors.Is(err, repository.ErrRoundClosed):
		return errors.Conflictf("round is closed")
	default:
		return err
	}
}
