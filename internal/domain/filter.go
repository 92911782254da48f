package domain

import "time"

// Optional holds a value that may be absent. It lets filters say "no
// predicate" without sentinel values.
type Optional[T any] struct {
	value T
	set   bool
}

// Some wraps a present value.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// Page is an offset/size window. The page index is From/Size, so a From
// that is not a multiple of Size is truncated down.
type Page struct {
	From int
	Size int
}

// Offset returns the first row of the page.
func (p Page) Offset() int {
	if p.Size <= 0 {
		return 0
	}
	return (p.From / p.Size) * p.Size
}

// Validate checks the window bounds.
func (p Page) Validate() error {
	if p.From < 0 {
		return &ValidationError{Field: "from", Reason: "must not be negative"}
	}
	if p.Size <= 0 {
		return &ValidationError{Field: "size", Reason: "must be positive"}
	}
	return nil
}

// CommentSearch holds the optional predicates of an administrator search.
// An absent Start or End leaves that side of the creation range open.
type CommentSearch struct {
	Status   Optional[CommentStatus]
	EventID  Optional[string]
	AuthorID Optional[string]
	Start    Optional[time.Time]
	End      Optional[time.Time]
	Page     Page
}
