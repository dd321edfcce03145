// Package validation runs remote, per-field validation of destination values.
//
// Every (destination type, field id) pair is tracked independently. Each call
// receives a sequence number; issuing a newer call for the same pair cancels
// the older one and, whatever order the responses arrive in, only the newest
// call may record a status. Transport failures are reported as StatusFailed,
// a non-blocking warning, and are never confused with an invalid value.
package validation
