package ledger

// Status is the lifecycle state of an invoice. A pending invoice is
// currently owed by its customer; paid and cancelled are both "not owed".
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

// ParseStatus returns the Status for s, or false if s is not one of the
// three invoice states.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusPending, StatusPaid, StatusCancelled:
		return Status(s), true
	}
	return "", false
}

// balanceDelta returns the adjustment applied to the customer's balance
// when an invoice of the given total moves from prev to next.
//
//	pending -> paid       -total
//	pending -> cancelled  -total
//	paid -> pending       +total
//	cancelled -> pending  +total
//	paid <-> cancelled    0
//	X -> X                0
//
// Only transitions into or out of pending move money: the balance tracks
// the currently-owed amount, and paid/cancelled both contribute nothing.
func balanceDelta(prev, next Status, total float64) float64 {
	if prev == next {
		return 0
	}
	switch {
	case prev == StatusPending:
		return -total
	case next == StatusPending:
		return total
	}
	return 0
}
