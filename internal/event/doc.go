// Package event provides due-date normalization and the projection of
// scraped course/assignment records into calendar events.
//
// Each event carries a deterministic UID derived from the course and
// assignment IDs, so re-running a sync against unchanged assignments
// reproduces identical UIDs and remote upserts stay idempotent. Snapshot
// diffing reports assignments that are new or changed since the last run.
package event
