// SPDX-License-Identifier: MIT
package vcs_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/skaphos/syncer/internal/gitx"
	"github.com/skaphos/syncer/internal/vcs"
)

func gitCmd(dir string, args ...string) {
	GinkgoHelper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=syncer", "GIT_AUTHOR_EMAIL=syncer@example.com",
		"GIT_COMMITTER_NAME=syncer", "GIT_COMMITTER_EMAIL=syncer@example.com",
	)
	out, err := cmd.CombinedOutput()
	Expect(err).NotTo(HaveOccurred(), string(out))
}

func commitFile(dir, name, content string) {
	GinkgoHelper()
	Expect(os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644)).To(Succeed())
	gitCmd(dir, "add", name)
	gitCmd(dir, "commit", "-q", "-m", "update "+name)
}

var _ = Describe("GitAdapter against real git", Ordered, func() {
	var (
		ctx     context.Context
		adapter *vcs.GitAdapter
		root    string
		remote  string
		seed    string
		work    string
	)

	BeforeAll(func() {
		if _, err := exec.LookPath("git"); err != nil {
			Skip("git binary not available")
		}
		ctx = context.Background()
		adapter = vcs.NewGitAdapter(&gitx.GitRunner{})
		root = GinkgoT().TempDir()
		remote = filepath.Join(root, "remote.git")
		seed = filepath.Join(root, "seed")
		work = filepath.Join(root, "work")

		gitCmd(root, "init", "-q", "--bare", remote)
		gitCmd(remote, "symbolic-ref", "HEAD", "refs/heads/main")
		gitCmd(root, "init", "-q", seed)
		gitCmd(seed, "symbolic-ref", "HEAD", "refs/heads/main")
		commitFile(seed, "README.md", "hello\n")
		gitCmd(seed, "remote", "add", "origin", remote)
		gitCmd(seed, "push", "-q", "-u", "origin", "main")
		Expect(adapter.Clone(ctx, remote, work)).To(Succeed())
	})

	It("sees a fresh clone as clean", func() {
		st := vcs.Probe(ctx, adapter, work, vcs.ProbeOptions{})
		Expect(st.IsRepo).To(BeTrue())
		Expect(st.HasRemote).To(BeTrue())
		Expect(st.DefaultBranch).To(Equal("main"))
		Expect(st.Clean()).To(BeTrue())
		Expect(adapter.RemoteURL(ctx, work)).To(Equal(remote))
	})

	It("fast-forwards when behind", func() {
		commitFile(seed, "a.txt", "a\n")
		gitCmd(seed, "push", "-q", "origin", "main")

		st := vcs.Probe(ctx, adapter, work, vcs.ProbeOptions{Fetch: true, Detail: true})
		Expect(st.Behind).To(Equal(1))
		Expect(st.BehindCommits).To(HaveLen(1))
		Expect(adapter.Pull(ctx, work, "main")).To(Succeed())
		Expect(adapter.BehindCount(ctx, work, "main")).To(Equal(0))
	})

	It("pushes when ahead", func() {
		commitFile(work, "b.txt", "b\n")
		Expect(adapter.UnpushedCount(ctx, work, "main")).To(Equal(1))
		Expect(adapter.Push(ctx, work, "main")).To(Succeed())
		Expect(adapter.UnpushedCount(ctx, work, "main")).To(Equal(0))
	})

	It("counts uncommitted paths and stashes", func() {
		Expect(os.WriteFile(filepath.Join(work, "scratch.txt"), []byte("x"), 0o644)).To(Succeed())
		Expect(adapter.UncommittedChanges(ctx, work)).To(ConsistOf("?? scratch.txt"))
		gitCmd(work, "stash", "push", "-q", "-u")
		Expect(adapter.StashCount(ctx, work)).To(Equal(1))
		Expect(adapter.UncommittedChanges(ctx, work)).To(BeEmpty())
	})

	It("renames a branch and moves it on the remote", func() {
		remoteHas := func(dir, branch string) bool {
			exists, err := adapter.RemoteBranchExists(ctx, dir, branch)
			Expect(err).NotTo(HaveOccurred())
			return exists
		}
		gitCmd(work, "branch", "legacy")
		gitCmd(work, "push", "-q", "origin", "legacy")
		Expect(remoteHas(work, "legacy")).To(BeTrue())

		Expect(adapter.RenameBranch(ctx, work, "legacy", "modern")).To(Succeed())
		Expect(adapter.LocalBranchExists(ctx, work, "legacy")).To(BeFalse())
		Expect(adapter.PushBranch(ctx, work, "modern")).To(Succeed())
		Expect(adapter.Upstream(ctx, work, "modern")).To(Equal("origin/modern"))
		Expect(adapter.DeleteRemoteBranch(ctx, work, "legacy")).To(Succeed())
		Expect(remoteHas(work, "legacy")).To(BeFalse())

		Expect(adapter.SetOriginHead(ctx, work, "modern")).To(Succeed())
		Expect(adapter.OriginHead(ctx, work)).To(Equal("modern"))
	})
})
