// SPDX-License-Identifier: MIT
package gitx_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/skaphos/syncer/internal/gitx"
)

var _ = Describe("ParsePorcelainLines", func() {
	It("returns nil for clean output", func() {
		Expect(gitx.ParsePorcelainLines("")).To(BeNil())
		Expect(gitx.ParsePorcelainLines("\n\n")).To(BeNil())
	})

	It("keeps leading status columns and drops carriage returns", func() {
		Expect(gitx.ParsePorcelainLines(" M x\r\nA  y\n")).To(Equal([]string{" M x", "A  y"}))
	})
})

var _ = Describe("ParseCount", func() {
	DescribeTable("parses rev-list counts",
		func(in string, want int) {
			Expect(gitx.ParseCount(in)).To(Equal(want))
		},
		Entry("plain", "3", 3),
		Entry("padded", " 12\n", 12),
		Entry("empty", "", 0),
		Entry("garbage", "nope", 0),
		Entry("negative", "-1", 0),
	)
})

var _ = Describe("SplitLines", func() {
	It("trims and skips blanks", func() {
		Expect(gitx.SplitLines(" a \n\n b")).To(Equal([]string{"a", "b"}))
	})
})
