package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAction(t *testing.T) {
	before := testutil.ToFloat64(actionsTotal.WithLabelValues("publish", "published"))
	RecordAction("publish", "published")
	if got := testutil.ToFloat64(actionsTotal.WithLabelValues("publish", "published")); got != before+1 {
		t.Errorf("Expected counter %v, got %v", before+1, got)
	}
}

func TestObserveStep_CountsFailures(t *testing.T) {
	before := testutil.ToFloat64(stepFailuresTotal.WithLabelValues(StepDraft))

	ObserveStep(StepDraft, time.Now(), nil)
	ObserveStep(StepDraft, time.Now(), errors.New("boom"))

	if got := testutil.ToFloat64(stepFailuresTotal.WithLabelValues(StepDraft)); got != before+1 {
		t.Errorf("Expected one failure, got %v", got-before)
	}
}

func TestRecordRevalidation(t *testing.T) {
	before := testutil.ToFloat64(revalidationsTotal.WithLabelValues("error"))
	RecordRevalidation(errors.New("timeout"))
	RecordRevalidation(nil)
	if got := testutil.ToFloat64(revalidationsTotal.WithLabelValues("error")); got != before+1 {
		t.Errorf("Expected one error, got %v", got-before)
	}
}
