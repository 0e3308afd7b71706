package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricReviewsTotal   = "namefang.reviews.total"
	metricReviewDuration = "namefang.review.duration.seconds"
	metricRenamesTotal   = "namefang.renames.applied.total"
	metricErrorsTotal    = "namefang.errors.total"

	attrStatus = "status"

	statusOK    = "ok"
	statusError = "error"
)

// durationBucketBoundaries covers 1ms to 10s; reviews are CPU-bound
// and proportional to fragment size.
var durationBucketBoundaries = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// ReviewMetrics holds the OTel instruments for the review engine. It
// satisfies the engine's Observer interface.
type ReviewMetrics struct {
	reviewsTotal   metric.Int64Counter
	reviewDuration metric.Float64Histogram
	renamesTotal   metric.Int64Counter
	errorsTotal    metric.Int64Counter
}

// NewReviewMetrics creates review metric instruments from the given meter.
func NewReviewMetrics(mt metric.Meter) (*ReviewMetrics, error) {
	b := newMetricBuilder(mt)

	rm := &ReviewMetrics{
		reviewsTotal:   b.counter(metricReviewsTotal, "Total number of reviews", "{review}"),
		reviewDuration: b.histogram(metricReviewDuration, "Review duration in seconds", "s", durationBucketBoundaries...),
		renamesTotal:   b.counter(metricRenamesTotal, "Total renames applied", "{rename}"),
		errorsTotal:    b.counter(metricErrorsTotal, "Total review errors", "{error}"),
	}

	if b.err != nil {
		return nil, b.err
	}

	return rm, nil
}

// ObserveReview records one completed review. Safe to call on a nil
// receiver (no-op).
func (rm *ReviewMetrics) ObserveReview(elapsed time.Duration, applied int, err error) {
	if rm == nil {
		return
	}

	ctx := context.Background()

	status := statusOK
	if err != nil {
		status = statusError
	}

	attrs := metric.WithAttributes(attribute.String(attrStatus, status))

	rm.reviewsTotal.Add(ctx, 1, attrs)
	rm.reviewDuration.Record(ctx, elapsed.Seconds(), attrs)
	rm.renamesTotal.Add(ctx, int64(applied))

	if err != nil {
		rm.errorsTotal.Add(ctx, 1)
	}
}
