// Package postgres implements the persistent record store and the audit
// event sink on top of a pgx connection pool.
//
// The mutations the domain relies on for its safety properties are
// expressed as single atomic statements: consuming a recovery code is
// one conditional UPDATE, claiming an email comparison slot is one
// capped conditional increment, and replacing a recovery batch runs in
// a transaction. Concurrent verification attempts therefore cannot
// double-spend a code or slip past the attempt cap.
package postgres
