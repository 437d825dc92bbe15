// Package netinit tracks process-wide network subsystem usage.
//
// Some host networking stacks require a one-time startup and teardown ritual
// around socket use. The Go runtime owns that on the platforms we target, so
// the default hooks are no-ops, but every transport endpoint still registers
// here: the first Acquire runs the init hook and the last Release runs the
// teardown hook, so a platform that does need the ritual only has to install
// hooks in one place.
package netinit

import "sync"

var (
	mu     sync.Mutex
	active int

	// InitFunc runs when the endpoint count goes 0 -> 1.
	InitFunc = func() error { return nil }
	// TeardownFunc runs when the endpoint count goes 1 -> 0.
	TeardownFunc = func() {}
)

// Acquire registers one endpoint with the network subsystem, running the
// init hook if this is the first active endpoint.
func Acquire() error {
	mu.Lock()
	defer mu.Unlock()
	if active == 0 {
		if err := InitFunc(); err != nil {
			return err
		}
	}
	active++
	return nil
}

// Release deregisters one endpoint, running the teardown hook when the last
// active endpoint goes away. Release without a matching Acquire is a no-op.
func Release() {
	mu.Lock()
	defer mu.Unlock()
	if active == 0 {
		return
	}
	active--
	if active == 0 {
		TeardownFunc()
	}
}

// ActiveEndpoints reports the current number of registered endpoints.
func ActiveEndpoints() int {
	mu.Lock()
	defer mu.Unlock()
	return active
}
