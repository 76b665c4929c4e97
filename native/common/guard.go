package common

import (
	"errors"
	"sync/atomic"
)

var (
	ErrModulePaused  = errors.New("module paused")
	ErrReentrantCall = errors.New("reentrant call")
)

// PauseView exposes governance pause switches to native modules.
type PauseView interface {
	IsPaused(module string) bool
}

// Guard rejects the call when the named module is paused. A nil view means
// pausing is not wired and everything is allowed.
func Guard(p PauseView, module string) error {
	if p == nil || module == "" {
		return nil
	}
	if p.IsPaused(module) {
		return ErrModulePaused
	}
	return nil
}

// ReentrancyGuard is a non-blocking exclusion lock for state-mutating entry
// points. Execution is single-threaded per call, so a second acquisition can
// only come from a callback re-entering mid-operation; that is an error, not
// something to wait on.
type ReentrancyGuard struct {
	locked atomic.Bool
}

// Acquire takes the lock, failing with ErrReentrantCall when already held.
// Release with the returned function, typically via defer, so every exit
// path unlocks.
func (g *ReentrancyGuard) Acquire() (release func(), err error) {
	if !g.locked.CompareAndSwap(false, true) {
		return nil, ErrReentrantCall
	}
	return func() { g.locked.Store(false) }, nil
}
