// SPDX-License-Identifier: MIT
package vcs_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/skaphos/syncer/internal/vcs"
)

type runnerStub struct {
	responses map[string]string
	calls     []string
}

func (r *runnerStub) Run(_ context.Context, dir string, args ...string) (string, error) {
	key := dir + ":" + strings.Join(args, " ")
	r.calls = append(r.calls, key)
	if out, ok := r.responses[key]; ok {
		return out, nil
	}
	return "", errors.New("unexpected")
}

var _ = Describe("GitAdapter", func() {
	var (
		ctx  context.Context
		repo string
	)

	BeforeEach(func() {
		ctx = context.Background()
		repo = GinkgoT().TempDir()
		Expect(os.Mkdir(filepath.Join(repo, ".git"), 0o755)).To(Succeed())
	})

	It("uses the default runner when none is given", func() {
		Expect(vcs.NewGitAdapter(nil).Runner).NotTo(BeNil())
	})

	It("reports existence and git metadata from the filesystem", func() {
		a := vcs.NewGitAdapter(&runnerStub{})
		Expect(a.Exists(repo)).To(BeTrue())
		Expect(a.Exists(filepath.Join(repo, "missing"))).To(BeFalse())
		Expect(a.IsRepo(ctx, repo)).To(BeTrue())
		Expect(a.IsRepo(ctx, GinkgoT().TempDir())).To(BeFalse())
	})

	It("degrades failed queries to empty values", func() {
		a := vcs.NewGitAdapter(&runnerStub{})
		Expect(a.HasRemote(ctx, repo)).To(BeFalse())
		Expect(a.CurrentBranch(ctx, repo)).To(BeEmpty())
		Expect(a.DefaultBranch(ctx, repo)).To(BeEmpty())
		Expect(a.UncommittedChanges(ctx, repo)).To(BeNil())
		Expect(a.UnpushedCount(ctx, repo, "main")).To(Equal(0))
		Expect(a.StashCount(ctx, repo)).To(Equal(0))
		Expect(a.RemoteURL(ctx, repo)).To(BeEmpty())
	})

	It("surfaces remote branch lookup failures", func() {
		a := vcs.NewGitAdapter(&runnerStub{})
		exists, err := a.RemoteBranchExists(ctx, repo, "main")
		Expect(err).To(HaveOccurred())
		Expect(exists).To(BeFalse())
	})

	It("returns mutation errors", func() {
		a := vcs.NewGitAdapter(&runnerStub{})
		Expect(a.Push(ctx, repo, "main")).NotTo(Succeed())
		Expect(a.RenameBranch(ctx, repo, "master", "main")).NotTo(Succeed())
		Expect(a.SetOriginHead(ctx, repo, "main")).NotTo(Succeed())
	})
})

var _ = Describe("Probe", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("stops at a missing path", func() {
		st := vcs.Probe(ctx, vcs.NewGitAdapter(&runnerStub{}), filepath.Join(GinkgoT().TempDir(), "nope"), vcs.ProbeOptions{})
		Expect(st.Exists).To(BeFalse())
		Expect(st.IsRepo).To(BeFalse())
	})

	It("stops at a directory without git metadata", func() {
		st := vcs.Probe(ctx, vcs.NewGitAdapter(&runnerStub{}), GinkgoT().TempDir(), vcs.ProbeOptions{})
		Expect(st.Exists).To(BeTrue())
		Expect(st.IsRepo).To(BeFalse())
	})

	It("collects counts and detail for the default branch", func() {
		dir := GinkgoT().TempDir()
		Expect(os.Mkdir(filepath.Join(dir, ".git"), 0o755)).To(Succeed())
		stub := &runnerStub{responses: map[string]string{
			dir + ":remote": "origin",
			dir + ":-c fetch.recurseSubmodules=false fetch --quiet --prune":     "",
			dir + ":status --porcelain":                                         " M a.go",
			dir + ":stash list":                                                 "stash@{0}: WIP",
			dir + ":symbolic-ref --quiet refs/remotes/origin/HEAD":              "refs/remotes/origin/main",
			dir + ":rev-parse --verify --quiet refs/remotes/origin/main":        "abc",
			dir + ":rev-list --count refs/remotes/origin/main..refs/heads/main": "1",
			dir + ":rev-list --count refs/heads/main..refs/remotes/origin/main": "0",
			dir + ":log --oneline refs/remotes/origin/main..refs/heads/main":    "abc1234 local work",
		}}
		st := vcs.Probe(ctx, vcs.NewGitAdapter(stub), dir, vcs.ProbeOptions{Fetch: true, Detail: true})
		Expect(st.HasRemote).To(BeTrue())
		Expect(st.DefaultBranch).To(Equal("main"))
		Expect(st.Uncommitted).To(Equal(1))
		Expect(st.Ahead).To(Equal(1))
		Expect(st.Behind).To(Equal(0))
		Expect(st.Stashes).To(Equal(1))
		Expect(st.Changes).To(Equal([]string{" M a.go"}))
		Expect(st.UnpushedCommits).To(Equal([]string{"abc1234 local work"}))
		Expect(st.BehindCommits).To(BeNil())
		Expect(stub.calls).To(ContainElement(dir + ":-c fetch.recurseSubmodules=false fetch --quiet --prune"))
	})
})

var _ = Describe("Repo", func() {
	It("computes the remote URL from host, owner and name", func() {
		Expect(vcs.Repo{Name: "tool", Owner: "me", Host: "https://github.com/"}.RemoteURL()).To(Equal("https://github.com/me/tool"))
		Expect(vcs.Repo{Name: "tool", Owner: "me", Host: "git.example.com"}.RemoteURL()).To(Equal("https://git.example.com/me/tool"))
		Expect(vcs.Repo{Name: "tool", Owner: "me"}.RemoteURL()).To(Equal("https://github.com/me/tool"))
	})
})
