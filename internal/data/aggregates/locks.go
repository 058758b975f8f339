package aggregates

import (
	"hash/fnv"
	"sync"

	"github.com/google/uuid"
)

const lockStripes = 64

// ProjectLocks serializes recomputation per project inside one process.
// Projects hash onto a fixed set of mutexes; unrelated projects may share a
// stripe, which only costs throughput.
type ProjectLocks struct {
	stripes [lockStripes]sync.Mutex
}

func NewProjectLocks() *ProjectLocks {
	return &ProjectLocks{}
}

// Lock blocks until the project's stripe is held and returns the release func.
func (l *ProjectLocks) Lock(projectID uuid.UUID) func() {
	h := fnv.New32a()
	_, _ = h.Write(projectID[:])
	mu := &l.stripes[h.Sum32()%lockStripes]
	mu.Lock()
	return mu.Unlock
}
