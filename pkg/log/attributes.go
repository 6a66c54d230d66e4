// Standard attribute keys for pipeline logging. Using these keys keeps log
// output consistent across stages and makes runs easy to filter.

package log

// Pipeline and stage context.
const (
	// ComponentKey identifies which component emitted the record.
	ComponentKey = "component"

	// StageKey names the pipeline stage ("load", "prepare", "split",
	// "fit", "evaluate", "log_artifacts").
	StageKey = "pipeline.stage"

	// RunIDKey carries the artifact bundle identifier of the current run.
	RunIDKey = "pipeline.run_id"

	// ModelClassKey carries the resolved estimator class name.
	ModelClassKey = "model.class"

	// BackendKey names the compute backend the fit runs under.
	BackendKey = "compute.backend"
)

// Data shape.
const (
	// SamplesKey is the number of rows being processed.
	SamplesKey = "data.samples"

	// FeaturesKey is the number of feature columns.
	FeaturesKey = "data.features"

	// ClassesKey is the number of distinct label classes.
	ClassesKey = "data.classes"

	// ColumnsDroppedKey counts non-numeric columns dropped during preparation.
	ColumnsDroppedKey = "data.columns_dropped"
)

// Performance and results.
const (
	// DurationMsKey records stage execution time in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// MetricKeyPrefix prefixes scalar evaluation metrics ("metrics.micro").
	MetricKeyPrefix = "metrics."
)

// Error context.
const (
	// ErrKey is the attribute under which errors are logged.
	ErrKey = "error"

	// StacktraceKey carries a stack trace extracted from a wrapped error.
	StacktraceKey = "stacktrace"
)
