// SPDX-License-Identifier: MIT
package vcs

import "strings"

// Repo is the runtime handle for one configured repository. Path is already
// home-expanded. It is never persisted.
type Repo struct {
	Name  string
	Path  string
	Owner string
	Host  string
}

// RemoteURL is the clone URL computed from host, owner and name.
// A host without a scheme is treated as https.
func (r Repo) RemoteURL() string {
	host := strings.TrimRight(strings.TrimSpace(r.Host), "/")
	if host == "" {
		host = "https://github.com"
	}
	if !strings.Contains(host, "://") && !strings.Contains(host, "@") {
		host = "https://" + host
	}
	return host + "/" + r.Owner + "/" + r.Name
}
