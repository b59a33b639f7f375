package pipeline

import (
	"context"
	"errors"
	"fmt"

	"newsjack/internal/actiontoken"
	"newsjack/internal/core"
)

// SignedLinks builds action links with a token signer and the site base URL.
type SignedLinks struct {
	Signer  *actiontoken.Signer
	BaseURL string
}

func (l SignedLinks) ActionURL(storyID string, action core.Action) string {
	return l.Signer.ActionURL(l.BaseURL, storyID, action)
}

// PartialDeliveryError is returned by MultiNotifier when at least one
// notifier delivered the notice and at least one failed.
type PartialDeliveryError struct {
	Delivered int
	Failed    int
	Err       error
}

func (e *PartialDeliveryError) Error() string {
	return fmt.Sprintf("review notice delivered by %d of %d notifiers: %v", e.Delivered, e.Delivered+e.Failed, e.Err)
}

func (e *PartialDeliveryError) Unwrap() error {
	return e.Err
}

// MultiNotifier fans a notice out to every notifier. If some deliver and
// others fail the error is a *PartialDeliveryError.
type MultiNotifier []Notifier

func (m MultiNotifier) NotifyReview(ctx context.Context, notice core.ReviewNotice) error {
	var errs []error
	for _, n := range m {
		if err := n.NotifyReview(ctx, notice); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	if delivered := len(m) - len(errs); delivered > 0 {
		return &PartialDeliveryError{Delivered: delivered, Failed: len(errs), Err: errors.Join(errs...)}
	}
	return errors.Join(errs...)
}

// reachedReviewer reports whether a notify error still left a reviewer informed.
func reachedReviewer(err error) bool {
	var partial *PartialDeliveryError
	return err == nil || errors.As(err, &partial)
}
