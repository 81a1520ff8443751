package autodiff

import (
	"github.com/born-ml/revad/internal/arena"
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Checkpoint identifies one PushCheckpoint call. It must be handed back to
// PopCheckpoint, which uses it to enforce LIFO order.
type Checkpoint struct {
	id    uint64
	depth int
}

// Depth returns the nesting depth of the checkpoint, starting at 1.
func (c Checkpoint) Depth() int {
	return c.depth
}

type checkpoint struct {
	id       uint64
	tape     int
	noChain  int
	allocs   int
	chainers int
	nodes    arena.Mark
	refs     arena.Mark
	consts   arena.Mark
}

// PushCheckpoint records the current size of the tape, the auxiliary
// allocations and the arenas. Checkpoints nest to any depth.
func (s *Stack) PushCheckpoint() Checkpoint {
	s.checkpointID++
	s.checkpoints = append(s.checkpoints, checkpoint{
		id:       s.checkpointID,
		tape:     len(s.tape),
		noChain:  len(s.noChain),
		allocs:   len(s.allocs),
		chainers: len(s.chainers),
		nodes:    s.nodes.Mark(),
		refs:     s.refs.Mark(),
		consts:   s.consts.Mark(),
	})
	klog.V(2).Infof("%s: push checkpoint #%d at depth %d (%d nodes)",
		s.name, s.checkpointID, len(s.checkpoints), s.nodes.Len())
	return Checkpoint{id: s.checkpointID, depth: len(s.checkpoints)}
}

// PopCheckpoint discards everything recorded since cp was pushed: auxiliary
// allocations are released newest first, the tape is truncated and the
// arenas rewound. Vars created since cp become stale.
//
// cp must be the innermost active checkpoint: ErrNoCheckpoint is returned
// when none is active and ErrCheckpointOrder when cp is not the innermost
// one. The stack is left untouched in both cases.
func (s *Stack) PopCheckpoint(cp Checkpoint) error {
	if len(s.checkpoints) == 0 {
		return errors.Wrapf(ErrNoCheckpoint, "%s: pop checkpoint #%d", s.name, cp.id)
	}
	top := s.checkpoints[len(s.checkpoints)-1]
	if top.id != cp.id {
		return errors.Wrapf(ErrCheckpointOrder, "%s: pop checkpoint #%d (depth %d), innermost is #%d (depth %d)",
			s.name, cp.id, cp.depth, top.id, len(s.checkpoints))
	}
	s.checkpoints = s.checkpoints[:len(s.checkpoints)-1]

	discarded := s.nodes.Len() - int(top.nodes)
	s.releaseFrom(top.allocs)
	clear(s.chainers[top.chainers:])
	s.chainers = s.chainers[:top.chainers]
	s.tape = s.tape[:top.tape]
	s.noChain = s.noChain[:top.noChain]
	mustRewind(s.nodes.Rewind(top.nodes))
	mustRewind(s.refs.Rewind(top.refs))
	mustRewind(s.consts.Rewind(top.consts))
	s.gen++
	klog.V(2).Infof("%s: pop checkpoint #%d, discarded %d nodes", s.name, top.id, discarded)
	return nil
}

// mustRewind panics on a failed rewind: the recorded marks can only be
// beyond the live region if the arenas were rewound behind the stack's back.
func mustRewind(err error) {
	if err != nil {
		exceptions.Panicf("corrupted stack: %v", err)
	}
}

// Depth returns the number of active checkpoints.
func (s *Stack) Depth() int {
	return len(s.checkpoints)
}

// Nested runs fn between a PushCheckpoint and its PopCheckpoint, so that
// everything fn records is discarded when it returns, while the graph
// recorded before the call is left intact. A panic inside fn whose value is
// an error (for instance a stale Var) is returned as an error, after the
// checkpoint was popped; other panics are re-raised. Checkpoints fn leaves
// open are discarded with its own; on a normal return that is reported as
// ErrCheckpointOrder.
func (s *Stack) Nested(fn func() error) (err error) {
	cp := s.PushCheckpoint()
	defer func() {
		r := recover()
		if s.active(cp) {
			// Inner checkpoints left open by fn are discarded with cp.
			open := 0
			for s.checkpoints[len(s.checkpoints)-1].id != cp.id {
				s.checkpoints = s.checkpoints[:len(s.checkpoints)-1]
				open++
			}
			if open > 0 && r == nil && err == nil {
				err = errors.Wrapf(ErrCheckpointOrder, "%s: nested computation left %d checkpoints open", s.name, open)
			}
		}
		if popErr := s.PopCheckpoint(cp); popErr != nil && err == nil {
			err = popErr
		}
		if r == nil {
			return
		}
		if e, ok := r.(error); ok {
			err = errors.WithMessage(e, "nested computation")
			return
		}
		panic(r)
	}()
	return fn()
}

func (s *Stack) active(cp Checkpoint) bool {
	for _, c := range s.checkpoints {
		if c.id == cp.id {
			return true
		}
	}
	return false
}
