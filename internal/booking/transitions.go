// File: internal/booking/transitions.go
package booking

// Actor is who is attempting a status change.
type Actor string

const (
	ActorCustomer    Actor = "customer"
	ActorGarageOwner Actor = "garage_owner"
)

// transition is one permitted edge in the booking lifecycle.
type transition struct {
	actor Actor
	from  Status
	to    Status
}

// transitionTable is the full set of legal status changes. The server is the
// only place this is enforced; clients may hide buttons but never decide.
//
// Garage owners drive the workflow: confirm or cancel a pending booking,
// complete or cancel a confirmed one. Customers can only back out, and only
// before the work is done.
var transitionTable = map[transition]struct{}{
	{ActorGarageOwner, StatusPending, StatusConfirmed}:   {},
	{ActorGarageOwner, StatusPending, StatusCancelled}:   {},
	{ActorGarageOwner, StatusConfirmed, StatusCompleted}: {},
	{ActorGarageOwner, StatusConfirmed, StatusCancelled}: {},

	{ActorCustomer, StatusPending, StatusCancelled}:   {},
	{ActorCustomer, StatusConfirmed, StatusCancelled}: {},
}

// CanTransition reports whether actor may move a booking from one status to
// another. Completed and cancelled are terminal for everyone.
func CanTransition(actor Actor, from, to Status) bool {
	_, ok := transitionTable[transition{actor, from, to}]
	return ok
}
