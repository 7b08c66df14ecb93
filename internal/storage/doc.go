// Package storage provides JSON-based persistence under the data directory.
//
// It keeps the UID-keyed snapshot of the previous sync run, which drives the
// new/changed reporting, and hosts the token.json path used by the Google
// Calendar client.
package storage
