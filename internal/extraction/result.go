package extraction

// Outcome tags an extraction result.
type Outcome string

const (
	OutcomeOK        Outcome = "ok"
	OutcomeEmpty     Outcome = "empty"
	OutcomeMalformed Outcome = "malformed"
)

// Result carries extracted items. Empty means the page had no such data,
// Malformed means the page had structure the heuristics could not read.
type Result[T any] struct {
	Items   []T
	Outcome Outcome
	Reason  string
}

func ok[T any](items []T) Result[T] {
	if len(items) == 0 {
		return Result[T]{Items: []T{}, Outcome: OutcomeEmpty}
	}
	return Result[T]{Items: items, Outcome: OutcomeOK}
}

func empty[T any](reason string) Result[T] {
	return Result[T]{Items: []T{}, Outcome: OutcomeEmpty, Reason: reason}
}

func malformed[T any](reason string) Result[T] {
	return Result[T]{Items: []T{}, Outcome: OutcomeMalformed, Reason: reason}
}

func (r Result[T]) Len() int {
	return len(r.Items)
}
