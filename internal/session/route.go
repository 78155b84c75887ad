package session

// Route labels how a turn enters the pipeline: fresh recommendation,
// revision of the previous answer, or unroutable input that only earns
// a clarification.
type Route int

const (
	RouteNew Route = iota
	RouteModify
	RouteUnroutable
)

func (r Route) String() string {
	switch r {
	case RouteNew:
		return "NEW"
	case RouteModify:
		return "MODIFY"
	case RouteUnroutable:
		return "UNROUTABLE"
	default:
		return "UNKNOWN"
	}
}
