// Package gcal is a minimal Google Calendar API client covering what the
// sync needs: calendar lookup by name, find-event-by-title, create/update,
// paged listing, and deletion. OAuth tokens come from a token.json file,
// bootstrapped from a base64 environment variable in non-interactive
// environments and refreshed through the standard token endpoint.
package gcal
