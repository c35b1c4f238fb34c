// SPDX-License-Identifier: MIT
package history_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/skaphos/syncer/internal/history"
	"github.com/skaphos/syncer/internal/model"
)

func snap(path string, uncommitted, unpushed int) model.RepoSnapshot {
	return model.RepoSnapshot{Name: path, Path: path, Status: model.StateIssues, Uncommitted: uncommitted, Unpushed: unpushed}
}

var _ = Describe("trends", func() {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	daysAgo := func(d int) time.Time { return now.Add(-time.Duration(d) * 24 * time.Hour) }

	Describe("Summarize", func() {
		It("averages issues inside the window", func() {
			events := []model.SyncRunEvent{
				event(daysAgo(40), 9),
				event(daysAgo(5), 1),
				event(daysAgo(1), 2),
			}
			got := history.Summarize(events, now, history.DefaultWindow)
			Expect(got.Runs).To(Equal(2))
			Expect(got.LastRun).To(Equal(daysAgo(1)))
			Expect(got.AvgIssues).To(BeNumerically("~", 1.5))
		})

		It("is zero without recent runs", func() {
			Expect(history.Summarize(nil, now, history.DefaultWindow)).To(Equal(history.Summary{}))
		})
	})

	Describe("FindStale", func() {
		It("tracks the start of the current dirty streak", func() {
			events := []model.SyncRunEvent{
				event(daysAgo(4), 0, snap("/b", 1, 0)),
				event(daysAgo(10), 0, snap("/a", 1, 0), snap("/b", 0, 0)),
				event(daysAgo(2), 0, snap("/a", 3, 0), snap("/c", 1, 0)),
			}
			got := history.FindStale(events, now, history.DefaultStaleDays)
			Expect(got).To(Equal([]history.StaleRepo{
				{Path: "/a", DirtySince: daysAgo(10), Days: 10},
				{Path: "/b", DirtySince: daysAgo(4), Days: 4},
			}))
		})

		It("resets when a run sees the repo clean", func() {
			events := []model.SyncRunEvent{
				event(daysAgo(10), 0, snap("/a", 1, 0)),
				event(daysAgo(6), 0, snap("/a", 0, 0)),
				event(daysAgo(1), 0, snap("/a", 1, 0)),
			}
			Expect(history.FindStale(events, now, 3)).To(BeEmpty())
			Expect(history.FindStale(events, now, 1)).To(HaveLen(1))
		})

		It("handles no events", func() {
			Expect(history.FindStale(nil, now, 3)).To(BeNil())
		})
	})

	Describe("FrequentlyDirty", func() {
		It("keeps paths dirty in at least a quarter of runs", func() {
			var events []model.SyncRunEvent
			for i := range 8 {
				repos := []model.RepoSnapshot{snap("/clean", 0, 0)}
				if i < 3 {
					repos = append(repos, snap("/often", 0, 1))
				}
				if i == 0 {
					repos = append(repos, snap("/once", 2, 0))
				}
				events = append(events, event(daysAgo(i), 0, repos...))
			}
			got := history.FrequentlyDirty(events, now, history.DefaultWindow)
			Expect(got).To(Equal([]history.DirtyRepo{{Path: "/often", Count: 3, Runs: 8}}))
		})
	})

	Describe("Recent", func() {
		It("returns the newest events first", func() {
			events := []model.SyncRunEvent{event(daysAgo(3), 3), event(daysAgo(1), 1), event(daysAgo(2), 2)}
			got := history.Recent(events, 2)
			Expect(got).To(HaveLen(2))
			Expect(got[0].Summary.Issues).To(Equal(1))
			Expect(got[1].Summary.Issues).To(Equal(2))
		})
	})

	Describe("Ago", func() {
		DescribeTable("renders compact distances",
			func(d time.Duration, want string) {
				Expect(history.Ago(now.Add(-d), now)).To(Equal(want))
			},
			Entry("seconds", 10*time.Second, "just now"),
			Entry("minutes", 5*time.Minute, "5m ago"),
			Entry("hours", 3*time.Hour, "3h ago"),
			Entry("days", 50*time.Hour, "2d ago"),
			Entry("months", 65*24*time.Hour, "2mo ago"),
			Entry("years", 800*24*time.Hour, "2y ago"),
		)
	})
})
