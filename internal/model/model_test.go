// SPDX-License-Identifier: MIT
package model_test

import (
	"encoding/json"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/skaphos/syncer/internal/model"
)

var _ = Describe("Model JSON", func() {
	It("round-trips a SyncRunEvent", func() {
		event := model.SyncRunEvent{
			Timestamp:  time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC),
			ConfigName: "personal",
			DryRun:     true,
			Repos: []model.RepoSnapshot{
				{Name: "foo", Path: "~/code/foo", Status: model.StateIssues, Branch: "main", Uncommitted: 3, Unpushed: 2, Behind: 1, Stashes: 1},
				{Name: "bar", Path: "~/code/bar", Status: model.StateSynced, Branch: "master"},
				{Name: "baz", Path: "~/code/baz", Status: model.StateMissing},
			},
			Summary: model.RunSummary{Total: 3, Synced: 1, Issues: 1, DurationMs: 1234, Pullable: 1},
		}

		data, err := json.Marshal(event)
		Expect(err).NotTo(HaveOccurred())

		var decoded model.SyncRunEvent
		Expect(json.Unmarshal(data, &decoded)).To(Succeed())
		Expect(decoded).To(Equal(event))
	})

	It("uses snake_case keys on the wire", func() {
		data, err := json.Marshal(model.SyncRunEvent{ConfigName: "x", Summary: model.RunSummary{DurationMs: 5}})
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring(`"config_name":"x"`))
		Expect(string(data)).To(ContainSubstring(`"duration_ms":5`))
		Expect(string(data)).NotTo(ContainSubstring("pullable"))
	})
})

var _ = Describe("RepoState", func() {
	It("knows every state", func() {
		for _, state := range model.States() {
			Expect(state.Valid()).To(BeTrue())
		}
		Expect(model.RepoState("bogus").Valid()).To(BeFalse())
	})

	It("flags attention states", func() {
		Expect(model.StateIssues.NeedsAttention()).To(BeTrue())
		Expect(model.StatePathMismatch.NeedsAttention()).To(BeTrue())
		Expect(model.StateNotGit.NeedsAttention()).To(BeTrue())
		Expect(model.StateNoRemote.NeedsAttention()).To(BeTrue())
		Expect(model.StateSynced.NeedsAttention()).To(BeFalse())
		Expect(model.StatePulled.NeedsAttention()).To(BeFalse())
		Expect(model.StateCloned.NeedsAttention()).To(BeFalse())
		Expect(model.StateMissing.NeedsAttention()).To(BeFalse())
	})
})

var _ = Describe("RepoStatus", func() {
	It("is clean only without pending work", func() {
		Expect(model.RepoStatus{}.Clean()).To(BeTrue())
		Expect(model.RepoStatus{Stashes: 1}.Clean()).To(BeFalse())
		Expect(model.RepoStatus{Behind: 1}.Clean()).To(BeFalse())
	})
})
