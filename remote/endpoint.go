package remote

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// Scheme selects the wire protocol used to reach a share
type Scheme string

const (
	SchemeSMB  Scheme = "smb"
	SchemeSFTP Scheme = "sftp"
)

var defaultPorts = map[Scheme]int{
	SchemeSMB:  445,
	SchemeSFTP: 22,
}

// Endpoint is a parsed server address.
type Endpoint struct {
	Scheme Scheme
	User   string // empty = use the configured username
	Host   string
	Port   int
}

// ParseEndpoint parses the server address typed by the user.
//
// Accepted forms:
//   - host, host:port, [v6addr]:port  → smb
//   - smb://[user@]host[:port][/]
//   - sftp://[user@]host[:port][/]
func ParseEndpoint(raw string) (Endpoint, error) {
	arg := strings.TrimSpace(raw)
	if arg == "" {
		return Endpoint{}, fmt.Errorf("empty server address")
	}

	ep := Endpoint{Scheme: SchemeSMB}
	if schemeEnd := strings.Index(arg, "://"); schemeEnd >= 0 {
		ep.Scheme = Scheme(strings.ToLower(arg[:schemeEnd]))
		if _, known := defaultPorts[ep.Scheme]; !known {
			return Endpoint{}, fmt.Errorf("unsupported scheme %q", arg[:schemeEnd])
		}
		arg = arg[schemeEnd+3:]
	}
	arg = strings.TrimSuffix(arg, "/")
	if strings.Contains(arg, "/") {
		return Endpoint{}, fmt.Errorf("unexpected path in server address %q", raw)
	}

	if atIdx := strings.LastIndex(arg, "@"); atIdx >= 0 {
		ep.User = arg[:atIdx]
		arg = arg[atIdx+1:]
		if ep.User == "" {
			return Endpoint{}, fmt.Errorf("empty user in server address %q", raw)
		}
	}

	host, port, err := splitHostPort(arg)
	if err != nil {
		return Endpoint{}, fmt.Errorf("bad server address %q: %w", raw, err)
	}
	if !isValidHost(host) {
		return Endpoint{}, fmt.Errorf("%q is neither an IP address nor a host name", host)
	}
	ep.Host = host
	ep.Port = port
	if ep.Port == 0 {
		ep.Port = defaultPorts[ep.Scheme]
	}
	return ep, nil
}

func splitHostPort(arg string) (string, int, error) {
	// Bare IPv6 address without port
	if ip := net.ParseIP(arg); ip != nil {
		return arg, 0, nil
	}
	if !strings.Contains(arg, ":") {
		return arg, 0, nil
	}
	host, portStr, err := net.SplitHostPort(arg)
	if err != nil {
		return "", 0, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return "", 0, fmt.Errorf("invalid port %q", portStr)
	}
	return host, port, nil
}

func isValidHost(host string) bool {
	if host == "" {
		return false
	}
	if net.ParseIP(host) != nil {
		return true
	}
	if len(host) > 253 {
		return false
	}
	for _, label := range strings.Split(host, ".") {
		if len(label) == 0 || len(label) > 63 {
			return false
		}
		if label[0] == '-' || label[len(label)-1] == '-' {
			return false
		}
		for _, c := range label {
			isAlnum := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
			if !isAlnum && c != '-' {
				return false
			}
		}
	}
	return true
}

// Address returns the host:port string to dial.
func (e Endpoint) Address() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

func (e Endpoint) String() string {
	if e.User != "" {
		return fmt.Sprintf("%s://%s@%s", e.Scheme, e.User, e.Address())
	}
	return fmt.Sprintf("%s://%s", e.Scheme, e.Address())
}
