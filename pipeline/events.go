package pipeline

// Step names a stage of a pipeline run.
type Step string

const (
	// StepValidate is reported once the input has been validated.
	StepValidate Step = "validate"
	// StepCorrection is reported once the model's answer has been extracted.
	StepCorrection Step = "correction"
	// StepDone is reported last, carrying the final result.
	StepDone Step = "done"
)

// Event reports progress of a Run. Valid and Errors are set on every event;
// Result is set on correction and done events.
type Event struct {
	Step   Step     `json:"step"`
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
	Result *Result  `json:"result,omitempty"`
}

// ProgressFunc receives events synchronously, in order, on the goroutine
// that called Run.
type ProgressFunc func(Event)
