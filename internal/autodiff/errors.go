package autodiff

import "github.com/pkg/errors"

// Usage errors. They are returned (wrapped) by the operations that can
// return errors, and carried as the panic value by arithmetic on Vars, which
// cannot. Test with errors.Is.
var (
	// ErrNoCheckpoint is returned when popping with no active checkpoint.
	ErrNoCheckpoint = errors.New("no active checkpoint")

	// ErrCheckpointOrder is returned when popping a checkpoint that is not
	// the innermost active one.
	ErrCheckpointOrder = errors.New("checkpoint popped out of LIFO order")

	// ErrNestedActive is returned by Reset while checkpoints are active.
	ErrNestedActive = errors.New("checkpoints still active")

	// ErrNoRoot is returned by Grad when the root cannot seed a sweep.
	ErrNoRoot = errors.New("invalid gradient root")

	// ErrUninitialized is raised when a zero Var is used.
	ErrUninitialized = errors.New("uninitialized Var")

	// ErrStaleVar is raised when a Var refers to a node discarded by a
	// checkpoint pop or a reset.
	ErrStaleVar = errors.New("stale Var: node was discarded")

	// ErrMixedStacks is raised when one operation combines Vars of two stacks.
	ErrMixedStacks = errors.New("Vars belong to different stacks")

	// ErrLength is raised when parallel slices given to an operation differ
	// in length.
	ErrLength = errors.New("mismatched operand lengths")
)
