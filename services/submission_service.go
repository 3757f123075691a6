package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"wish-wall/contract"
	"wish-wall/domain/document"
	"wish-wall/domain/wall"
	"wish-wall/errors"
	"wish-wall/observability"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

type ISubmissionService interface {
	Submit(ctx context.Context, text string) (string, error)
}

type submitRequest struct {
	Text string `validate:"notblank"`
}

// SubmissionService turns a guest's text into a pending message.
type SubmissionService struct {
	store      contract.DocumentStore
	collection document.CollectionPath
	log        *slog.Logger
	validate   *validator.Validate
	now        func() time.Time
}

func NewSubmissionService(store contract.DocumentStore, collection document.CollectionPath, log *slog.Logger) *SubmissionService {
	validate := validator.New()
	_ = validate.RegisterValidation("notblank", validators.NotBlank)
	return &SubmissionService{
		store:      store,
		collection: collection,
		log:        log,
		validate:   validate,
		now:        time.Now,
	}
}

// WithClock replaces the submission clock.
func (s *SubmissionService) WithClock(now func() time.Time) *SubmissionService {
	s.now = now
	return s
}

// Submit stores text as given, in one attempt, and returns the new id.
// Blank text is refused before the store is reached.
func (s *SubmissionService) Submit(ctx context.Context, text string) (string, error) {
	if err := s.validate.Struct(submitRequest{Text: text}); err != nil {
		observability.WishesRejectedEmpty.Inc()
		return "", errors.ErrEmptyWish
	}

	id, err := s.store.Create(ctx, s.collection, wall.NewFields(text, s.now()))
	if err != nil {
		s.log.Error("Wish submission failed", "error", err)
		return "", storeError(err)
	}
	observability.WishesSubmitted.Inc()
	s.log.Debug("Wish submitted", "id", id)
	return id, nil
}

// storeError keeps caller-facing domain errors and marks everything else retryable.
func storeError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.IsCallerError(err):
		return err
	default:
		return fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
}
