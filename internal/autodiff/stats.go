package autodiff

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// Stats describes the memory held by a Stack.
type Stats struct {
	Nodes     int // live nodes
	PeakNodes int // high-water mark of live nodes since the last FreeMemory
	Chaining  int // nodes on the chaining tape
	NoChain   int // nodes on the no-chain tape
	Allocs    int // live auxiliary allocations
	Depth     int // active checkpoints
	LiveBytes uint64
	Reserved  uint64
}

// Stats returns a snapshot of the stack's memory usage.
func (s *Stack) Stats() Stats {
	return Stats{
		Nodes:     s.nodes.Len(),
		PeakNodes: s.nodes.Peak(),
		Chaining:  len(s.tape),
		NoChain:   len(s.noChain),
		Allocs:    len(s.allocs),
		Depth:     len(s.checkpoints),
		LiveBytes: s.LiveBytes(),
		Reserved:  uint64(s.nodes.Reserved() + s.refs.Reserved() + s.consts.Reserved()),
	}
}

// LiveBytes returns the size of the arenas' live region. It grows with every
// recorded operation and returns to its earlier value when a checkpoint is
// popped.
func (s *Stack) LiveBytes() uint64 {
	return uint64(s.nodes.Bytes() + s.refs.Bytes() + s.consts.Bytes())
}

func (st Stats) String() string {
	return fmt.Sprintf("%d nodes (peak %d, %d chaining, %d no-chain), %d allocs, depth %d, %s live / %s reserved",
		st.Nodes, st.PeakNodes, st.Chaining, st.NoChain, st.Allocs, st.Depth,
		humanize.Bytes(st.LiveBytes), humanize.Bytes(st.Reserved))
}
