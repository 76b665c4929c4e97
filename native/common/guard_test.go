package common

import (
	"errors"
	"testing"
)

type pauseMap map[string]bool

func (p pauseMap) IsPaused(module string) bool { return p[module] }

func TestGuard(t *testing.T) {
	if err := Guard(nil, "gate"); err != nil {
		t.Fatalf("nil view should allow: %v", err)
	}
	if err := Guard(pauseMap{"gate": false}, "gate"); err != nil {
		t.Fatalf("unpaused module should allow: %v", err)
	}
	if err := Guard(pauseMap{"gate": true}, "gate"); !errors.Is(err, ErrModulePaused) {
		t.Fatalf("expected ErrModulePaused, got %v", err)
	}
	if err := Guard(pauseMap{"gate": true}, ""); err != nil {
		t.Fatalf("empty module name should allow: %v", err)
	}
}

func TestReentrancyGuard(t *testing.T) {
	var g ReentrancyGuard

	release, err := g.Acquire()
	if err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	if _, err := g.Acquire(); !errors.Is(err, ErrReentrantCall) {
		t.Fatalf("expected ErrReentrantCall, got %v", err)
	}
	release()
	release2, err := g.Acquire()
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	release2()
}
