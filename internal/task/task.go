// Package task runs resumable units of work cooperatively on the caller's goroutine.
//
// A Task does a bounded slice of work per Step and reports whether it wants to run again. A Scheduler holds a queue of tasks and picks which one
// steps next according to its Policy. Schedulers are tasks themselves, so they nest: a child scheduler added with AddScheduler runs as one task of
// its parent.
//
// Nothing here starts goroutines or sleeps; callers decide when to call Iteration (for example from an idle handler notified via OnRunnable) or
// drain everything with CompleteTasks.
package task

import (
	"fmt"
	"runtime/debug"
	"slices"

	"github.com/codalotl/panediff/internal/simplelogger"
)

// Task is a resumable unit of work. Step returns true to be scheduled again and false when finished. A returned error or a panic finishes the
// task; the failure is logged.
//
// Tasks are compared with ==, so implementations must be comparable; pointer types are the norm.
type Task interface {
	Step() (bool, error)
}

type funcTask struct {
	fn func() (bool, error)
}

func (f *funcTask) Step() (bool, error) {
	return f.fn()
}

// Func adapts fn to a Task. Every call returns a distinct task.
func Func(fn func() (bool, error)) Task {
	return &funcTask{fn: fn}
}

// Policy decides which queued task runs next.
type Policy int

const (
	LIFO       Policy = iota // most recently added first
	FIFO                     // oldest first
	RoundRobin               // oldest first, then rotated to the back
)

func (p Policy) String() string {
	switch p {
	case LIFO:
		return "lifo"
	case FIFO:
		return "fifo"
	case RoundRobin:
		return "round-robin"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// Scheduler is a queue of tasks. It is single threaded: all methods must be called from one goroutine (tasks may call them from within Step).
type Scheduler struct {
	policy    Policy
	tasks     []Task
	callbacks []func(*Scheduler)
}

// NewScheduler returns an empty scheduler with the given policy.
func NewScheduler(policy Policy) *Scheduler {
	return &Scheduler{policy: policy}
}

func NewLIFO() *Scheduler       { return NewScheduler(LIFO) }
func NewFIFO() *Scheduler       { return NewScheduler(FIFO) }
func NewRoundRobin() *Scheduler { return NewScheduler(RoundRobin) }

// Policy returns the scheduler's policy.
func (s *Scheduler) Policy() Policy {
	return s.policy
}

// OnRunnable registers fn to be called whenever a task is added, so an idle handler can be installed.
func (s *Scheduler) OnRunnable(fn func(*Scheduler)) {
	s.callbacks = append(s.callbacks, fn)
}

// AddTask queues t. The queue is ordered oldest to newest; atFront places t before everything else instead of after. Adding a task already
// queued moves it.
func (s *Scheduler) AddTask(t Task, atFront bool) {
	s.remove(t)
	if atFront {
		s.tasks = slices.Insert(s.tasks, 0, t)
	} else {
		s.tasks = append(s.tasks, t)
	}
	for _, cb := range s.callbacks {
		cb(s)
	}
}

// AddScheduler queues child as a task and re-queues it whenever something is added to it.
func (s *Scheduler) AddScheduler(child *Scheduler) {
	child.OnRunnable(func(c *Scheduler) {
		s.AddTask(c, false)
	})
	s.AddTask(child, false)
}

// RemoveTask drops t from the queue. It is a no-op if t is not queued, and is safe to call from within a running task (including t itself).
func (s *Scheduler) RemoveTask(t Task) {
	s.remove(t)
}

// RemoveAllTasks empties the queue.
func (s *Scheduler) RemoveAllTasks() {
	s.tasks = nil
}

func (s *Scheduler) remove(t Task) {
	if i := slices.Index(s.tasks, t); i >= 0 {
		s.tasks = slices.Delete(s.tasks, i, i+1)
	}
}

// TasksPending reports whether any task is queued.
func (s *Scheduler) TasksPending() bool {
	return len(s.tasks) > 0
}

// Len returns the number of queued tasks.
func (s *Scheduler) Len() int {
	return len(s.tasks)
}

func (s *Scheduler) current() Task {
	if len(s.tasks) == 0 {
		return nil
	}
	switch s.policy {
	case LIFO:
		return s.tasks[len(s.tasks)-1]
	case RoundRobin:
		t := s.tasks[0]
		copy(s.tasks, s.tasks[1:])
		s.tasks[len(s.tasks)-1] = t
		return t
	default:
		return s.tasks[0]
	}
}

// Iteration steps the current task once. It returns true if that task wants to run again. A task that finishes, fails, or panics is removed.
func (s *Scheduler) Iteration() bool {
	t := s.current()
	if t == nil {
		return false
	}
	more := runStep(t)
	if !more {
		s.remove(t)
	}
	return more
}

func runStep(t Task) (more bool) {
	defer func() {
		if r := recover(); r != nil {
			simplelogger.Log("task: %T panicked: %v\n%s", t, r, debug.Stack())
			more = false
		}
	}()
	more, err := t.Step()
	if err != nil {
		simplelogger.Log("task: %T failed: %v", t, err)
		return false
	}
	return more
}

// CompleteTasks runs iterations until the queue is empty, including tasks added while running.
func (s *Scheduler) CompleteTasks() {
	for s.TasksPending() {
		s.Iteration()
	}
}

// Step lets a Scheduler be queued in another scheduler. It runs one iteration if anything is queued and reports whether tasks remain.
func (s *Scheduler) Step() (bool, error) {
	if s.TasksPending() {
		s.Iteration()
	}
	return s.TasksPending(), nil
}
