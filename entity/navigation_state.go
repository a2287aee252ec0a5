package entity

// RootPath is the root of every share
const RootPath = "/"

// NavigationState is the browsed position inside a share.
// CurrentPath is RootPath iff History is empty.
type NavigationState struct {
	CurrentPath string
	History     []string
}

// RootNavigationState is the state right after a fresh connect
func RootNavigationState() NavigationState {
	return NavigationState{CurrentPath: RootPath, History: []string{}}
}

// IsRoot tells whether the share root is being browsed
func (s NavigationState) IsRoot() bool {
	return s.CurrentPath == RootPath
}
