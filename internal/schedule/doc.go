// Package schedule expands subjects and their dosing sequences into the
// long-format sampling schedule (one row per subject, period and nominal time).
//
// TimeMap numbers the configured nominal times in the order they were given.
// The same numbering is used when actual draw times are reconciled, so the
// order of the time list must be identical between the two phases.
package schedule
