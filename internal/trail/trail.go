// Package trail records bounded position histories for rendering.
package trail

import (
	"sync"

	"github.com/san-kum/gravsim/internal/dynamo"
)

const (
	DefaultEvery    = 5
	DefaultCapacity = 300
)

// ring is a fixed-capacity FIFO of points; the oldest is overwritten first.
type ring struct {
	points []dynamo.Vec2
	head   int
	size   int
}

func newRing(capacity int) *ring {
	return &ring{points: make([]dynamo.Vec2, capacity)}
}

func (r *ring) push(p dynamo.Vec2) {
	r.points[(r.head+r.size)%len(r.points)] = p
	if r.size < len(r.points) {
		r.size++
		return
	}
	r.head = (r.head + 1) % len(r.points)
}

func (r *ring) appendTo(dst []dynamo.Vec2) []dynamo.Vec2 {
	for i := 0; i < r.size; i++ {
		dst = append(dst, r.points[(r.head+i)%len(r.points)])
	}
	return dst
}

func (r *ring) reset() {
	r.head = 0
	r.size = 0
}

// Recorder samples body positions every Nth step into one ring per body.
// It implements dynamo.Observer.
type Recorder struct {
	mu    sync.Mutex
	every int
	count int
	rings []*ring
}

func NewRecorder(bodies, every, capacity int) *Recorder {
	if every < 1 {
		every = 1
	}
	if capacity < 1 {
		capacity = 1
	}
	rings := make([]*ring, bodies)
	for i := range rings {
		rings[i] = newRing(capacity)
	}
	return &Recorder{every: every, rings: rings}
}

func (r *Recorder) OnStep(snap dynamo.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.count++
	if r.count%r.every != 0 {
		return
	}
	for i, b := range snap.Bodies {
		if i < len(r.rings) {
			r.rings[i].push(b.Position)
		}
	}
}

// Points returns body i's trail, oldest first.
func (r *Recorder) Points(i int) []dynamo.Vec2 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i < 0 || i >= len(r.rings) {
		return nil
	}
	return r.rings[i].appendTo(make([]dynamo.Vec2, 0, r.rings[i].size))
}

func (r *Recorder) Bodies() int { return len(r.rings) }

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count = 0
	for _, rg := range r.rings {
		rg.reset()
	}
}
