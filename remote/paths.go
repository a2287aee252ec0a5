package remote

import "strings"

// JoinPath appends name to an absolute share path
func JoinPath(dir, name string) string {
	if dir == "/" {
		return "/" + name
	}
	return dir + "/" + name
}

// ParentPath strips the last segment of an absolute share path
func ParentPath(p string) string {
	components := splitPath(p)
	if len(components) <= 1 {
		return "/"
	}
	return "/" + strings.Join(components[:len(components)-1], "/")
}

// BaseName returns the last segment of an absolute share path, or "" at the root
func BaseName(p string) string {
	components := splitPath(p)
	if len(components) == 0 {
		return ""
	}
	return components[len(components)-1]
}

func splitPath(p string) []string {
	components := make([]string, 0, 8)
	for _, c := range strings.Split(p, "/") {
		if c != "" {
			components = append(components, c)
		}
	}
	return components
}
