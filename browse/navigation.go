package browse

import (
	"github.com/m-manu/picstream/entity"
	"github.com/m-manu/picstream/remote"
)

// NavigationStack tracks where in the share the user is.
// Not safe for concurrent use; Browser guards it.
type NavigationStack struct {
	state entity.NavigationState
}

// NewNavigationStack starts at the share root
func NewNavigationStack() *NavigationStack {
	return &NavigationStack{state: entity.RootNavigationState()}
}

// Descend moves into a directory entry, remembering the current path
func (n *NavigationStack) Descend(entry entity.FileSystemEntry) error {
	if !entry.IsDirectory {
		return entity.ErrNotDirectory
	}
	if entry.Path == "" || entry.Path == entity.RootPath {
		n.Reset()
		return nil
	}
	n.state.History = append(n.state.History, n.state.CurrentPath)
	n.state.CurrentPath = entry.Path
	return nil
}

// Ascend moves to the parent directory. It's a no-op at the root and returns false then.
func (n *NavigationStack) Ascend() bool {
	if n.state.IsRoot() {
		return false
	}
	parent := remote.ParentPath(n.state.CurrentPath)
	if parent == entity.RootPath {
		n.Reset()
		return true
	}
	if len(n.state.History) > 0 {
		n.state.History = n.state.History[:len(n.state.History)-1]
	}
	// History is empty only at the root
	if len(n.state.History) == 0 {
		n.state.History = []string{entity.RootPath}
	}
	n.state.CurrentPath = parent
	return true
}

// Reset returns to the share root with no history
func (n *NavigationStack) Reset() {
	n.state = entity.RootNavigationState()
}

// State returns a copy of the current state
func (n *NavigationStack) State() entity.NavigationState {
	history := make([]string, len(n.state.History))
	copy(history, n.state.History)
	return entity.NavigationState{CurrentPath: n.state.CurrentPath, History: history}
}
