package hermes

const (
	SubjectDatasetLoaded      = "steel.dataset.loaded"
	SubjectDatasetReload      = "steel.dataset.reload"
	SubjectSelectionEvaluated = "steel.selection.evaluated"

	StreamName   = "ALLOY_EVENTS"
	StreamMaxAge = "168h" // 7 days
)

// StreamSubjects are the subjects captured by the JetStream stream.
var StreamSubjects = []string{"steel.dataset.>", "steel.selection.>"}
