package core

import "context"

// Pinger is implemented by stores that can report their availability.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}
