package domain

// Transition defines a valid state change: an action moves an entity from Src to Dst.
type Transition[S ~string, A ~string] struct {
	Action A
	Src    S
	Dst    S
}
