package registry

// A single mutex and a single condition variable guard the whole registry.
// Every state change is announced with Broadcast and every waiter re-checks
// its own predicate after waking. There are no per-passenger or per-elevator
// condition variables; waking everyone on every change is intentional at this scale.

func (reg *Registry) lock() {
	reg.mu.Lock()
}

func (reg *Registry) unlock() {
	reg.mu.Unlock()
}

func (reg *Registry) broadcast() {
	reg.cond.Broadcast()
}

// waitUntil blocks until pred holds. Must be called with the lock held.
// Returns ErrClosed if the registry is shut down before pred holds.
func (reg *Registry) waitUntil(pred func() bool) error {
	for !pred() {
		if reg.closed {
			return ErrClosed
		}
		reg.cond.Wait()
	}
	return nil
}

// Shutdown releases every waiter with ErrClosed. Intended for watchdogs; a run
// that is never shut down waits unconditionally.
func (reg *Registry) Shutdown() {
	reg.lock()
	defer reg.unlock()
	reg.closed = true
	reg.broadcast()
}

func (reg *Registry) Closed() bool {
	reg.lock()
	defer reg.unlock()
	return reg.closed
}
