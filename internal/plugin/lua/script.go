// Package lua runs provider plugin scripts.
//
// A script defines a global function related(path) returning an array of
// paths. gopher-lua states are not goroutine-safe, so each Script serializes
// calls through a mutex; concurrent lookups against the same plugin queue
// behind each other while distinct plugins run in parallel.
package lua

import (
	"context"
	"errors"
	"fmt"
	"sync"

	glua "github.com/yuin/gopher-lua"
)

// EntryPoint is the global function a provider script must define.
const EntryPoint = "related"

// Sentinel errors for script loading and execution.
var (
	// ErrNoEntryPoint is returned when a script does not define related().
	ErrNoEntryPoint = errors.New("lua: script does not define related()")

	// ErrClosed is returned when calling a closed script.
	ErrClosed = errors.New("lua: script is closed")
)

// Script is a loaded provider script.
type Script struct {
	mu     sync.Mutex
	state  *glua.LState
	fn     *glua.LFunction
	closed bool
}

// LoadFile loads and compiles a script from disk.
func LoadFile(path string) (*Script, error) {
	L := glua.NewState()
	if err := L.DoFile(path); err != nil {
		L.Close()
		return nil, fmt.Errorf("lua: load %s: %w", path, err)
	}
	return newScript(L)
}

// LoadString loads a script from source, used by tests.
func LoadString(source string) (*Script, error) {
	L := glua.NewState()
	if err := L.DoString(source); err != nil {
		L.Close()
		return nil, fmt.Errorf("lua: load: %w", err)
	}
	return newScript(L)
}

func newScript(L *glua.LState) (*Script, error) {
	fn, ok := L.GetGlobal(EntryPoint).(*glua.LFunction)
	if !ok {
		L.Close()
		return nil, ErrNoEntryPoint
	}
	return &Script{state: L, fn: fn}, nil
}

// Call invokes related(path) and converts the returned table to paths.
// Non-string entries are skipped. The context aborts a runaway script.
func (s *Script) Call(ctx context.Context, path string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}

	s.state.SetContext(ctx)
	defer s.state.RemoveContext()

	err := s.state.CallByParam(glua.P{Fn: s.fn, NRet: 1, Protect: true}, glua.LString(path))
	if err != nil {
		return nil, fmt.Errorf("lua: related(%s): %w", path, err)
	}

	ret := s.state.Get(-1)
	s.state.Pop(1)
	return toPaths(ret), nil
}

// Close releases the underlying Lua state. Close is idempotent.
func (s *Script) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.state.Close()
}

// toPaths converts a Lua return value to a path slice. Anything that is not
// an array-like table of strings yields whatever string entries it has.
func toPaths(lv glua.LValue) []string {
	tbl, ok := lv.(*glua.LTable)
	if !ok {
		return nil
	}

	var paths []string
	tbl.ForEach(func(_, v glua.LValue) {
		if s, ok := v.(glua.LString); ok && s != "" {
			paths = append(paths, string(s))
		}
	})
	return paths
}
