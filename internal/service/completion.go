package service

// CompletionDetector fires the aggregation handoff once per run, the first
// time every expected recipient has finished
type CompletionDetector struct {
	fired bool
}

// Observe returns true exactly once, when completed reaches denominator
func (d *CompletionDetector) Observe(completed, denominator int) bool {
	if d.fired || completed != denominator {
		return false
	}
	d.fired = true
	return true
}

func (d *CompletionDetector) Fired() bool {
	return d.fired
}
