package observability

// Attribute keys, span names and metric names shared by every instrumented
// component.

// --- Extraction Attributes ---

const (
	// AttrExtractID is a random id correlating the logs of one extraction call
	AttrExtractID = "extract.id"

	// AttrExtractInputBytes is the size of the scanned text
	AttrExtractInputBytes = "extract.input.bytes"

	// AttrExtractInputPreview is a shortened copy of the scanned text
	AttrExtractInputPreview = "extract.input.preview"

	// AttrExtractAttempts is the number of candidate offsets tried
	AttrExtractAttempts = "extract.attempts"

	// AttrExtractOffset is the byte offset of a candidate start
	AttrExtractOffset = "extract.offset"

	// AttrExtractRootKind is the kind of the schema root ("object", "array")
	AttrExtractRootKind = "extract.root.kind"

	// AttrExtractBatchSize is the number of texts in a batch call
	AttrExtractBatchSize = "extract.batch.size"

	// AttrExtractBatchFailed is the number of batch items that failed
	AttrExtractBatchFailed = "extract.batch.failed"
)

// --- Schema Attributes ---

const (
	// AttrSchemaFields is the property count of the root object
	AttrSchemaFields = "schema.fields"

	// AttrSchemaSource names where a description was loaded from
	AttrSchemaSource = "schema.source"
)

// --- Repair Attributes ---

const (
	// AttrRepairInputBytes is the size of the text handed to repair
	AttrRepairInputBytes = "repair.input.bytes"

	// AttrRepairSkippedBytes is the amount of leading prose removed
	AttrRepairSkippedBytes = "repair.skipped.bytes"
)

// --- General Attributes ---

const (
	AttrError     = "error"
	AttrErrorType = "error.type"
	AttrDuration  = "duration"
	AttrStatus    = "status"
)

// --- Span Names ---

const (
	SpanExtract      = "llmjson.extract"
	SpanExtractBatch = "llmjson.extract.batch"
	SpanRepair       = "llmjson.repair"
)

// --- Event Names ---

const (
	// EventCandidateRejected marks a start offset whose parse attempt failed
	EventCandidateRejected = "extract.candidate.rejected"
)

// --- Metric Names ---

const (
	// MetricExtractRequests counts extraction calls, labelled with AttrStatus
	MetricExtractRequests = "llmjson.extract.requests"

	// MetricExtractAttempts counts candidate offsets tried across all calls
	MetricExtractAttempts = "llmjson.extract.attempts"

	// MetricExtractDuration is the extraction latency histogram in seconds
	MetricExtractDuration = "llmjson.extract.duration"

	// MetricRepairRequests counts repair calls, labelled with AttrStatus
	MetricRepairRequests = "llmjson.repair.requests"
)
