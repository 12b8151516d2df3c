package github

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bgentry/go-netrc/netrc"
)

// Credentials is one login/password pair for Basic auth.
type Credentials struct {
	Login    string
	Password string
}

// CredentialProvider looks up credentials for an API host.
type CredentialProvider interface {
	Lookup(host string) (Credentials, error)
}

// NetrcProvider reads credentials from a netrc file. Path defaults to
// $NETRC, falling back to ~/.netrc.
type NetrcProvider struct {
	Path string
}

// Lookup returns the machine entry for host.
func (p *NetrcProvider) Lookup(host string) (Credentials, error) {
	path := p.Path
	if path == "" {
		path = os.Getenv("NETRC")
	}
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Credentials{}, fmt.Errorf("locating netrc: %w", err)
		}
		path = filepath.Join(home, ".netrc")
	}

	rc, err := netrc.ParseFile(path)
	if err != nil {
		return Credentials{}, fmt.Errorf("parsing %s: %w", path, err)
	}

	machine := rc.FindMachine(host)
	if machine == nil {
		return Credentials{}, fmt.Errorf("no netrc entry for %s in %s", host, path)
	}

	return Credentials{Login: machine.Login, Password: machine.Password}, nil
}

// StaticProvider returns fixed credentials regardless of host.
type StaticProvider struct {
	Creds Credentials
}

// Lookup returns the fixed credentials.
func (p *StaticProvider) Lookup(string) (Credentials, error) {
	return p.Creds, nil
}
