// SPDX-License-Identifier: MIT
package config_test

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/skaphos/syncer/internal/config"
)

var _ = Describe("home shorthand", func() {
	var home string

	BeforeEach(func() {
		home = GinkgoT().TempDir()
		GinkgoT().Setenv("HOME", home)
	})

	It("expands a leading tilde", func() {
		Expect(config.ExpandHome("~")).To(Equal(home))
		Expect(config.ExpandHome("~/code/tool")).To(Equal(filepath.Join(home, "code", "tool")))
		Expect(config.ExpandHome("/abs/path")).To(Equal("/abs/path"))
		Expect(config.ExpandHome("~other/x")).To(Equal("~other/x"))
	})

	It("contracts paths under home", func() {
		Expect(config.ContractHome(filepath.Join(home, "code", "tool"))).To(Equal("~/code/tool"))
		Expect(config.ContractHome(home)).To(Equal("~"))
		Expect(config.ContractHome("/srv/site")).To(Equal("/srv/site"))
	})

	It("round-trips", func() {
		Expect(config.ExpandHome(config.ContractHome(filepath.Join(home, "x")))).To(Equal(filepath.Join(home, "x")))
	})
})
