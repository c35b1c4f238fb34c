// SPDX-License-Identifier: MIT
package engine_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/skaphos/syncer/internal/engine"
	"github.com/skaphos/syncer/internal/model"
)

func present(uncommitted, ahead, behind, stashes int) model.RepoStatus {
	return model.RepoStatus{
		Exists:        true,
		IsRepo:        true,
		HasRemote:     true,
		DefaultBranch: "main",
		Uncommitted:   uncommitted,
		Ahead:         ahead,
		Behind:        behind,
		Stashes:       stashes,
	}
}

var _ = Describe("Decide", func() {
	DescribeTable("classifies a probed status",
		func(st model.RepoStatus, want engine.Verdict) {
			Expect(engine.Decide(st).Verdict).To(Equal(want))
		},
		Entry("missing path", model.RepoStatus{}, engine.VerdictMissing),
		Entry("no git metadata", model.RepoStatus{Exists: true}, engine.VerdictNotGit),
		Entry("no remote", model.RepoStatus{Exists: true, IsRepo: true}, engine.VerdictNoRemote),
		Entry("everything clean", present(0, 0, 0, 0), engine.VerdictSynced),
		Entry("only behind", present(0, 0, 2, 0), engine.VerdictPull),
		Entry("only ahead", present(0, 3, 0, 0), engine.VerdictPush),
		Entry("behind with stashes", present(0, 0, 2, 1), engine.VerdictPull),
		Entry("ahead with stashes", present(0, 1, 0, 4), engine.VerdictPush),
		Entry("only stashes", present(0, 0, 0, 1), engine.VerdictAttention),
		Entry("diverged", present(0, 1, 1, 0), engine.VerdictAttention),
		Entry("dirty and behind", present(1, 0, 1, 0), engine.VerdictAttention),
		Entry("dirty and ahead", present(2, 1, 0, 0), engine.VerdictAttention),
		Entry("dirty only", present(5, 0, 0, 0), engine.VerdictAttention),
	)

	It("ignores counts once a structural check fails", func() {
		st := model.RepoStatus{Exists: true, IsRepo: true, Behind: 4}
		Expect(engine.Decide(st)).To(Equal(engine.Decision{Verdict: engine.VerdictNoRemote}))
	})

	It("composes the attention message from non-zero counts", func() {
		d := engine.Decide(present(3, 2, 1, 0))
		Expect(d.Verdict).To(Equal(engine.VerdictAttention))
		Expect(d.Detail).To(Equal("3 uncommitted, 2 unpushed, 1 behind"))
	})

	It("lists stashes last", func() {
		Expect(engine.IssueSummary(present(1, 0, 0, 2))).To(Equal("1 uncommitted, 2 stash(es)"))
		Expect(engine.IssueSummary(present(0, 0, 0, 0))).To(BeEmpty())
	})

	It("leaves synced detail empty", func() {
		Expect(engine.Decide(present(0, 0, 0, 0)).Detail).To(BeEmpty())
	})
})
