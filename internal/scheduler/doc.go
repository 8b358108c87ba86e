// Package scheduler fans admitted identifiers out to a bounded worker pool
// and aggregates their outcomes. Admission goes through the ledger so each
// identifier is processed at most once per run and archived items never enter
// the pipeline.
package scheduler
