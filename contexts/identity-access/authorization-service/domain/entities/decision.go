package entities

// Decision is the outcome of an authorization check.
type Decision int

const (
	// DecisionAllow permits the operation.
	DecisionAllow Decision = iota + 1
	// DecisionForbidden denies an actor that can already see the resource.
	DecisionForbidden
	// DecisionNotFound denies without revealing that the resource exists.
	DecisionNotFound
)

func (d Decision) String() string {
	switch d {
	case DecisionAllow:
		return "allow"
	case DecisionForbidden:
		return "forbidden"
	case DecisionNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}
