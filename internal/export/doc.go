// Package export builds standalone handoff contexts for downstream pipeline
// stages.
//
// TaskContext is the only sanctioned way for a stage to receive "this
// stage's context plus its own parameters": a brand-new mapping with no live
// reference back into the store.
package export
