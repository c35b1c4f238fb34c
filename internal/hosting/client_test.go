// SPDX-License-Identifier: MIT
package hosting_test

import (
	"context"
	"errors"
	"fmt"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/skaphos/syncer/internal/hosting"
)

type mockRunner struct {
	responses map[string]string
	failures  map[string]error
	calls     []string
}

func (m *mockRunner) Run(_ context.Context, args ...string) (string, error) {
	key := strings.Join(args, " ")
	m.calls = append(m.calls, key)
	if err, ok := m.failures[key]; ok {
		return "", err
	}
	if out, ok := m.responses[key]; ok {
		return out, nil
	}
	return "", fmt.Errorf("unexpected call: %s", key)
}

var _ = Describe("GHClient", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("reads the fork flag", func() {
		r := &mockRunner{responses: map[string]string{
			"repo view me/tool --json isFork": `{"isFork":true}`,
		}}
		fork, err := hosting.NewGHClient(r, "https://github.com", nil).IsFork(ctx, "me", "tool")
		Expect(err).NotTo(HaveOccurred())
		Expect(fork).To(BeTrue())
	})

	It("reads the hosted default branch", func() {
		r := &mockRunner{responses: map[string]string{
			"repo view me/tool --json defaultBranchRef": `{"defaultBranchRef":{"name":"master"}}`,
		}}
		branch, err := hosting.NewGHClient(r, "", nil).DefaultBranch(ctx, "me", "tool")
		Expect(err).NotTo(HaveOccurred())
		Expect(branch).To(Equal("master"))
	})

	It("sets the default branch", func() {
		r := &mockRunner{responses: map[string]string{
			"repo edit me/tool --default-branch main": "",
		}}
		Expect(hosting.NewGHClient(r, "", nil).SetDefaultBranch(ctx, "me", "tool", "main")).To(Succeed())
		Expect(r.calls).To(Equal([]string{"repo edit me/tool --default-branch main"}))
	})

	It("qualifies repositories on other hosts", func() {
		r := &mockRunner{responses: map[string]string{
			"repo view git.example.com/me/tool --json isFork": `{"isFork":false}`,
		}}
		fork, err := hosting.NewGHClient(r, "https://Git.Example.com/", nil).IsFork(ctx, "me", "tool")
		Expect(err).NotTo(HaveOccurred())
		Expect(fork).To(BeFalse())
	})

	It("wraps gh failures in an OperationError", func() {
		cause := errors.New("HTTP 404")
		r := &mockRunner{failures: map[string]error{
			"repo view me/tool --json isFork": cause,
		}}
		_, err := hosting.NewGHClient(r, "", nil).IsFork(ctx, "me", "tool")
		var opErr *hosting.OperationError
		Expect(errors.As(err, &opErr)).To(BeTrue())
		Expect(opErr.Operation).To(Equal(hosting.OpIsFork))
		Expect(opErr.Repository).To(Equal("me/tool"))
		Expect(errors.Is(err, cause)).To(BeTrue())
	})

	It("reports undecodable responses", func() {
		r := &mockRunner{responses: map[string]string{
			"repo view me/tool --json defaultBranchRef": `not json`,
		}}
		_, err := hosting.NewGHClient(r, "", nil).DefaultBranch(ctx, "me", "tool")
		Expect(err).To(MatchError(ContainSubstring("decode response")))
	})

	It("rejects an empty owner or name", func() {
		_, err := hosting.NewGHClient(&mockRunner{}, "", nil).IsFork(ctx, "", "tool")
		Expect(err).To(MatchError(hosting.ErrInvalidRepository))
		Expect(hosting.NewGHClient(&mockRunner{}, "", nil).SetDefaultBranch(ctx, "me", "tool", " ")).NotTo(Succeed())
	})
})
