// Package gitauth resolves the go-git transport credentials shared by the
// template renderer and the GitOps writer, both of which clone or push
// over SSH using GITOPS_SSH_KEY_PATH.
package gitauth

import (
	"github.com/go-git/go-git/v5/plumbing/transport"
	gossh "github.com/go-git/go-git/v5/plumbing/transport/ssh"

	"github.com/orchestrator-core/controlplane/internal/apperr"
)

// Load returns the SSH public-key auth method for keyPath, or nil if
// keyPath is empty (unauthenticated access, e.g. a local or HTTP remote).
func Load(keyPath string) (transport.AuthMethod, error) {
	if keyPath == "" {
		return nil, nil
	}
	auth, err := gossh.NewPublicKeysFromFile("git", keyPath, "")
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "loading SSH key %s", keyPath)
	}
	return auth, nil
}
