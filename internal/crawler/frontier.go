package crawler

import "sync"

// Frontier is the FIFO queue of pending tasks shared by all workers. It also
// counts tasks that were popped but not yet marked Done, so workers can tell
// "empty for now" from "exhausted".
type Frontier struct {
	mu       sync.Mutex
	items    []Task
	head     int
	inFlight int
}

// NewFrontier returns an empty Frontier.
func NewFrontier() *Frontier {
	return &Frontier{}
}

// Seed enqueues depth-0 tasks for urls.
func (f *Frontier) Seed(urls []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range urls {
		f.items = append(f.items, Task{URL: u, Depth: 0})
	}
}

// Push enqueues a discovered task.
func (f *Frontier) Push(task Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, task)
}

// Pop dequeues the oldest task. A successful Pop must be paired with Done.
func (f *Frontier) Pop() (Task, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.head >= len(f.items) {
		return Task{}, false
	}
	task := f.items[f.head]
	f.items[f.head] = Task{}
	f.head++
	// Compact once the consumed prefix dominates the backing array.
	if f.head > 1024 && f.head*2 > len(f.items) {
		f.items = append([]Task(nil), f.items[f.head:]...)
		f.head = 0
	}
	f.inFlight++
	return task, true
}

// Done marks a popped task as finished, including any links it pushed.
func (f *Frontier) Done() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.inFlight > 0 {
		f.inFlight--
	}
}

// Len returns the number of pending tasks.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items) - f.head
}

// InFlight returns the number of popped tasks not yet marked Done.
func (f *Frontier) InFlight() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inFlight
}

// Exhausted reports whether no task is pending and none is in flight, so no
// worker can enqueue more work.
func (f *Frontier) Exhausted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.head >= len(f.items) && f.inFlight == 0
}
