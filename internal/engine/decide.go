// SPDX-License-Identifier: MIT
package engine

import (
	"fmt"
	"strings"

	"github.com/skaphos/syncer/internal/model"
)

// Verdict is the classification Decide assigns to a repository status.
type Verdict string

const (
	VerdictMissing   Verdict = "missing"
	VerdictNotGit    Verdict = "not_git"
	VerdictNoRemote  Verdict = "no_remote"
	VerdictSynced    Verdict = "synced"
	VerdictPull      Verdict = "pull"
	VerdictPush      Verdict = "push"
	VerdictAttention Verdict = "attention"
)

// Decision is the outcome of Decide. Detail lists every non-zero count for
// the pull, push and attention verdicts.
type Decision struct {
	Verdict Verdict
	Detail  string
}

// Decide maps a probed status to a verdict. It is the whole decision table:
//
//	!Exists                                  -> missing
//	!IsRepo                                  -> not_git
//	!HasRemote                               -> no_remote
//	behind > 0, uncommitted = 0, ahead = 0   -> pull
//	ahead > 0, uncommitted = 0, behind = 0   -> push
//	all counts zero                          -> synced
//	otherwise                                -> attention
//
// Stashes never block or enable an automatic pull or push; they only keep a
// repository out of synced.
func Decide(st model.RepoStatus) Decision {
	switch {
	case !st.Exists:
		return Decision{Verdict: VerdictMissing}
	case !st.IsRepo:
		return Decision{Verdict: VerdictNotGit}
	case !st.HasRemote:
		return Decision{Verdict: VerdictNoRemote}
	}

	detail := IssueSummary(st)
	switch {
	case st.Behind > 0 && st.Uncommitted == 0 && st.Ahead == 0:
		return Decision{Verdict: VerdictPull, Detail: detail}
	case st.Ahead > 0 && st.Uncommitted == 0 && st.Behind == 0:
		return Decision{Verdict: VerdictPush, Detail: detail}
	case st.Clean():
		return Decision{Verdict: VerdictSynced}
	default:
		return Decision{Verdict: VerdictAttention, Detail: detail}
	}
}

// IssueSummary renders the non-zero counts of st, for example
// "3 uncommitted, 2 unpushed, 1 behind, 1 stash(es)".
func IssueSummary(st model.RepoStatus) string {
	var parts []string
	if st.Uncommitted > 0 {
		parts = append(parts, fmt.Sprintf("%d uncommitted", st.Uncommitted))
	}
	if st.Ahead > 0 {
		parts = append(parts, fmt.Sprintf("%d unpushed", st.Ahead))
	}
	if st.Behind > 0 {
		parts = append(parts, fmt.Sprintf("%d behind", st.Behind))
	}
	if st.Stashes > 0 {
		parts = append(parts, fmt.Sprintf("%d stash(es)", st.Stashes))
	}
	return strings.Join(parts, ", ")
}
