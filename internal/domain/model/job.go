package model

// Job is one batch item flowing through the inference queue.
type Job struct {
	BatchID string
	Index   int // position in the originating batch
	Spec    RawSpec
	// Reply receives exactly one Outcome. Producers size it so workers
	// never block on send.
	Reply chan<- Outcome
}

// Outcome is the worker's answer for a Job.
type Outcome struct {
	Index      int
	Prediction Prediction
	Err        error
}

// Respond delivers o on the reply channel without blocking. It reports
// whether the outcome was delivered.
func (j Job) Respond(o Outcome) bool {
	if j.Reply == nil {
		return false
	}
	o.Index = j.Index
	select {
	case j.Reply <- o:
		return true
	default:
		return false
	}
}
