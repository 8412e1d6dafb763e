package core

// Ordering describes how a listing should be sorted.
type Ordering struct {
	Field     string
	Ascending bool
}

func (ord Ordering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// Direction returns 1 for ascending and -1 for descending orderings.
func (ord Ordering) Direction() int {
	if ord.Ascending {
		return 1
	}
	return -1
}
