// Package gradescope provides the authenticated Gradescope session and HTML
// extraction for courses and assignments.
//
// Gradescope publishes no schema for its pages, and the same logical field
// shows up in several markup shapes. Extraction therefore works through
// ordered strategy chains: each field is resolved by trying a list of pure
// extraction functions until one succeeds, and rows that yield nothing are
// dropped rather than failing the batch.
package gradescope
