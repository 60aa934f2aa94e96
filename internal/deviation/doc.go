// Package deviation reconciles recorded sample-draw times against the
// scheduled clock times and maps the difference back onto the nominal hour
// scale.
//
// Resolve is all-or-nothing for the period column: a single study stage that
// is not a roman numeral aborts the run. Everything after that is decided per
// record, and every record yields an Outcome that either carries a Deviation
// or the reason it was skipped.
package deviation
