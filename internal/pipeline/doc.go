// Package pipeline runs the two request-scoped flows end to end:
//
//   - Schedule: subjects table → decoded sequences → expanded schedule table.
//   - Actual: schedule table + variations table → deviations → merged table.
//
// Each call owns its tables; nothing is shared between calls.
package pipeline
