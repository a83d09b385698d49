// Package slotengine computes bookable coaching slots from a coach's weekly
// availability, a slot length, a booking window and busy intervals reported
// by a connected calendar.
//
// Everything here is a pure function of its arguments. Callers own fetching
// the schedule and busy times and re-running the computation when either
// changes.
package slotengine
