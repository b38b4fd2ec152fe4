package godbtx

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	meter = otel.Meter("github.com/dbtkit/godbtx",
		metric.WithInstrumentationVersion(buildVersion))

	tracer = otel.Tracer("github.com/dbtkit/godbtx")
)

var (
	// queriesSubmitted tracks the number of metric queries handed to the gateway.
	queriesSubmitted, _ = meter.Int64Counter("godbtx.queries_submitted")

	// queriesFailed tracks queries the gateway reported as FAILED.
	queriesFailed, _ = meter.Int64Counter("godbtx.queries_failed")

	// queriesTimedOut tracks queries abandoned because the poll deadline passed.
	queriesTimedOut, _ = meter.Int64Counter("godbtx.queries_timed_out")

	// resultPagesFetched tracks the number of result pages downloaded and decoded.
	resultPagesFetched, _ = meter.Int64Counter("godbtx.result_pages_fetched")
)
