package remote

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEndpoint_Valid(t *testing.T) {
	tests := []struct {
		input  string
		scheme Scheme
		user   string
		host   string
		port   int
	}{
		{"192.168.1.230", SchemeSMB, "", "192.168.1.230", 445},
		{"  nas.local ", SchemeSMB, "", "nas.local", 445},
		{"nas.local:1445", SchemeSMB, "", "nas.local", 1445},
		{"smb://192.168.1.230/", SchemeSMB, "", "192.168.1.230", 445},
		{"SMB://nas", SchemeSMB, "", "nas", 445},
		{"sftp://backup@myserver.com:2222", SchemeSFTP, "backup", "myserver.com", 2222},
		{"sftp://10.0.0.1", SchemeSFTP, "", "10.0.0.1", 22},
		{"[fe80::1]:445", SchemeSMB, "", "fe80::1", 445},
		{"fe80::1", SchemeSMB, "", "fe80::1", 445},
	}
	for _, tt := range tests {
		ep, err := ParseEndpoint(tt.input)
		assert.NoError(t, err, "input: %s", tt.input)
		assert.Equal(t, tt.scheme, ep.Scheme, "input: %s", tt.input)
		assert.Equal(t, tt.user, ep.User, "input: %s", tt.input)
		assert.Equal(t, tt.host, ep.Host, "input: %s", tt.input)
		assert.Equal(t, tt.port, ep.Port, "input: %s", tt.input)
	}
}

func TestParseEndpoint_Errors(t *testing.T) {
	tests := []string{
		"",
		"   ",
		"ftp://host",
		"smb://host/share",
		"host:0",
		"host:70000",
		"host:abc",
		"@host",
		"bad host",
		"-leading.dash",
		"under_score.local",
	}
	for _, input := range tests {
		_, err := ParseEndpoint(input)
		assert.Error(t, err, "input: %s", input)
	}
}

func TestEndpointAddress(t *testing.T) {
	ep := Endpoint{Scheme: SchemeSMB, Host: "myhost", Port: 445}
	assert.Equal(t, "myhost:445", ep.Address())
	assert.Equal(t, "smb://myhost:445", ep.String())

	ep = Endpoint{Scheme: SchemeSFTP, User: "me", Host: "::1", Port: 22}
	assert.Equal(t, "[::1]:22", ep.Address())
	assert.Equal(t, "sftp://me@[::1]:22", ep.String())
}
