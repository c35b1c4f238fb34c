// SPDX-License-Identifier: MIT
package history_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/skaphos/syncer/internal/history"
	"github.com/skaphos/syncer/internal/model"
)

func event(ts time.Time, issues int, repos ...model.RepoSnapshot) model.SyncRunEvent {
	return model.SyncRunEvent{
		Timestamp:  ts,
		ConfigName: "personal",
		Repos:      repos,
		Summary:    model.RunSummary{Total: len(repos), Issues: issues},
	}
}

var _ = Describe("DefaultDir", func() {
	It("prefers SYNCER_DATA_DIR", func() {
		GinkgoT().Setenv(history.EnvDataDir, "/data/syncer")
		Expect(history.DefaultDir()).To(Equal("/data/syncer"))
	})

	It("falls back to XDG_DATA_HOME", func() {
		GinkgoT().Setenv(history.EnvDataDir, "")
		GinkgoT().Setenv("XDG_DATA_HOME", "/xdg")
		Expect(history.DefaultDir()).To(Equal(filepath.Join("/xdg", "syncer")))
	})

	It("defaults under the home directory", func() {
		home := GinkgoT().TempDir()
		GinkgoT().Setenv(history.EnvDataDir, "")
		GinkgoT().Setenv("XDG_DATA_HOME", "")
		GinkgoT().Setenv("HOME", home)
		Expect(history.DefaultDir()).To(Equal(filepath.Join(home, ".local", "share", "syncer")))
	})
})

var _ = Describe("Store", func() {
	var (
		ctx   context.Context
		store *history.Store
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = history.NewStore(filepath.Join(GinkgoT().TempDir(), "nested"), nil)
	})

	It("reads nothing before the first append", func() {
		events, err := store.Read()
		Expect(err).NotTo(HaveOccurred())
		Expect(events).To(BeEmpty())
	})

	It("appends one line per event and reads them back in order", func() {
		t0 := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		first := event(t0, 1, model.RepoSnapshot{Name: "a", Path: "/a", Status: model.StateIssues, Uncommitted: 2})
		second := event(t0.Add(time.Hour), 0)
		Expect(store.Append(ctx, first)).To(Succeed())
		Expect(store.Append(ctx, second)).To(Succeed())

		data, err := os.ReadFile(store.Path())
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(HaveSuffix("\n"))

		events, err := store.Read()
		Expect(err).NotTo(HaveOccurred())
		Expect(events).To(HaveLen(2))
		Expect(events[0].Timestamp.Equal(t0)).To(BeTrue())
		Expect(events[0].Repos).To(Equal(first.Repos))
		Expect(events[1].Summary).To(Equal(second.Summary))
	})

	It("skips malformed lines", func() {
		Expect(store.Append(ctx, event(time.Now().UTC(), 0))).To(Succeed())
		f, err := os.OpenFile(store.Path(), os.O_APPEND|os.O_WRONLY, 0o644)
		Expect(err).NotTo(HaveOccurred())
		_, err = f.WriteString("{not json\n\n")
		Expect(err).NotTo(HaveOccurred())
		Expect(f.Close()).To(Succeed())
		Expect(store.Append(ctx, event(time.Now().UTC(), 2))).To(Succeed())

		events, err := store.Read()
		Expect(err).NotTo(HaveOccurred())
		Expect(events).To(HaveLen(2))
	})

	It("skips events carrying an unknown repository status", func() {
		Expect(store.Append(ctx, event(time.Now().UTC(), 0, model.RepoSnapshot{Name: "a", Path: "/a", Status: model.StateSynced}))).To(Succeed())
		Expect(store.Append(ctx, event(time.Now().UTC(), 0, model.RepoSnapshot{Name: "a", Path: "/a", Status: "exploded"}))).To(Succeed())

		events, err := store.Read()
		Expect(err).NotTo(HaveOccurred())
		Expect(events).To(HaveLen(1))
		Expect(events[0].Repos[0].Status).To(Equal(model.StateSynced))
	})

	It("serializes concurrent appends", func() {
		var wg sync.WaitGroup
		for i := range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer GinkgoRecover()
				Expect(store.Append(ctx, event(time.Now().UTC(), i))).To(Succeed())
			}()
		}
		wg.Wait()
		events, err := store.Read()
		Expect(err).NotTo(HaveOccurred())
		Expect(events).To(HaveLen(8))
	})
})
