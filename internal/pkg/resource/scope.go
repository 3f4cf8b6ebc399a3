package resource

// Scope is a cleanup ledger for engine handles acquired during one protocol
// invocation. It keeps one stack of release actions; each action either
// always runs when the invocation ends or only runs when it fails.
//
// A Scope is created by Run and must not escape the body passed to it.
// It is not safe for concurrent use.
type Scope struct {
	ledger []release
	done   bool
}

type release struct {
	fn            func()
	onlyOnFailure bool
}

// Acquire registers release to run unconditionally when the enclosing Run
// finishes and returns handle unchanged, so acquisition composes inline:
//
//	ctx := resource.Acquire(s, newCtx, engine.FreeContext)
func Acquire[H any](s *Scope, handle H, release func(H)) H {
	s.push(func() { release(handle) }, false)
	return handle
}

// AcquireUntilCommit registers release to run only if the enclosing Run
// fails. It is meant for handles whose ownership leaves the protocol on
// success, such as a freshly generated key.
func AcquireUntilCommit[H any](s *Scope, handle H, release func(H)) H {
	s.push(func() { release(handle) }, true)
	return handle
}

// Defer registers an arbitrary unconditional cleanup action.
func (s *Scope) Defer(fn func()) {
	s.push(fn, false)
}

func (s *Scope) push(fn func(), onlyOnFailure bool) {
	if s.done {
		panic("resource: acquire on a finished scope")
	}
	s.ledger = append(s.ledger, release{fn: fn, onlyOnFailure: onlyOnFailure})
}

// Run executes body with a fresh Scope and then walks the ledger once in
// reverse registration order. Failure-only actions are skipped when body
// succeeds. If body returns a non-nil error or panics, every action runs and
// the error or panic is propagated unchanged.
func Run[T any](body func(s *Scope) (T, error)) (result T, err error) {
	s := &Scope{}
	failed := true

	defer func() {
		s.done = true
		unwind(s.ledger, failed)
		s.ledger = nil
	}()

	result, err = body(s)
	failed = err != nil
	return result, err
}

// Do is Run for bodies that produce no value.
func Do(body func(s *Scope) error) error {
	_, err := Run(func(s *Scope) (struct{}, error) {
		return struct{}{}, body(s)
	})
	return err
}

func unwind(ledger []release, failed bool) {
	for i := len(ledger) - 1; i >= 0; i-- {
		if ledger[i].onlyOnFailure && !failed {
			continue
		}
		ledger[i].fn()
	}
}
