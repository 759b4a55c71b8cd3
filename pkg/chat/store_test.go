package chat_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/neurocura/neurocura/pkg/chat"
)

var _ = Describe("Store", func() {
	var store *chat.Store

	BeforeEach(func() {
		store = chat.NewStore()
	})

	Describe("Append", func() {
		It("creates user turns as complete", func() {
			turn, err := store.Append(chat.AuthorUser, "hello")

			Expect(err).NotTo(HaveOccurred())
			Expect(turn.Author).To(Equal(chat.AuthorUser))
			Expect(turn.Text).To(Equal("hello"))
			Expect(turn.Status).To(Equal(chat.StatusComplete))
		})

		It("creates assistant turns as pending", func() {
			turn, err := store.Append(chat.AuthorAssistant, "")

			Expect(err).NotTo(HaveOccurred())
			Expect(turn.Status).To(Equal(chat.StatusPending))
		})

		It("rejects unknown authors", func() {
			_, err := store.Append(chat.Author("system"), "nope")

			Expect(err).To(HaveOccurred())
			Expect(store.Len()).To(Equal(0))
		})

		It("keeps turns in insertion order", func() {
			first, _ := store.Append(chat.AuthorUser, "one")
			second, _ := store.Append(chat.AuthorUser, "two")

			turns := store.Turns()
			Expect(turns).To(HaveLen(2))
			Expect(turns[0].ID).To(Equal(first.ID))
			Expect(turns[1].ID).To(Equal(second.ID))
		})
	})

	Describe("Edit", func() {
		It("pushes the previous text onto the history, oldest first", func() {
			turn, _ := store.Append(chat.AuthorUser, "v1")

			Expect(store.Edit(turn.ID, "v2")).To(Succeed())
			Expect(store.Edit(turn.ID, "v3")).To(Succeed())

			history, err := store.History(turn.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(history).To(Equal([]string{"v1", "v2"}))

			current, ok := store.Get(turn.ID)
			Expect(ok).To(BeTrue())
			Expect(current.Text).To(Equal("v3"))
		})

		It("never duplicates the current text into the history", func() {
			turn, _ := store.Append(chat.AuthorUser, "v1")
			Expect(store.Edit(turn.ID, "v2")).To(Succeed())

			history, _ := store.History(turn.ID)
			Expect(history).NotTo(ContainElement("v2"))
		})

		It("fails with ErrInvalidTarget for assistant turns", func() {
			turn, _ := store.Append(chat.AuthorAssistant, "")

			err := store.Edit(turn.ID, "new text")

			var target chat.ErrInvalidTarget
			Expect(errors.As(err, &target)).To(BeTrue())
			Expect(target.ID).To(Equal(turn.ID))
		})

		It("fails with ErrInvalidTarget for unknown ids", func() {
			err := store.Edit("missing", "text")

			var target chat.ErrInvalidTarget
			Expect(errors.As(err, &target)).To(BeTrue())
		})

		It("leaves the conversation unmodified on failure", func() {
			turn, _ := store.Append(chat.AuthorAssistant, "reply")

			_ = store.Edit(turn.ID, "changed")

			got, _ := store.Get(turn.ID)
			Expect(got.Text).To(Equal("reply"))
			Expect(got.History).To(BeEmpty())
		})
	})

	Describe("History", func() {
		It("is empty for a never-edited turn", func() {
			turn, _ := store.Append(chat.AuthorUser, "hello")

			history, err := store.History(turn.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(history).To(BeEmpty())
		})

		It("fails for unknown ids", func() {
			_, err := store.History("missing")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ReplySlotFor", func() {
		It("inserts a pending assistant turn right after the user turn", func() {
			user, _ := store.Append(chat.AuthorUser, "question")

			slot, err := store.ReplySlotFor(user.ID)

			Expect(err).NotTo(HaveOccurred())
			Expect(slot.Author).To(Equal(chat.AuthorAssistant))
			Expect(slot.Status).To(Equal(chat.StatusPending))

			turns := store.Turns()
			Expect(turns).To(HaveLen(2))
			Expect(turns[1].ID).To(Equal(slot.ID))
		})

		It("resets an existing reply back to pending", func() {
			user, _ := store.Append(chat.AuthorUser, "question")
			slot, _ := store.ReplySlotFor(user.ID)
			Expect(store.SetComplete(slot.ID, "answer")).To(Succeed())

			again, err := store.ReplySlotFor(user.ID)

			Expect(err).NotTo(HaveOccurred())
			Expect(again.ID).To(Equal(slot.ID))
			Expect(again.Status).To(Equal(chat.StatusPending))
			Expect(again.Text).To(BeEmpty())
			Expect(store.Len()).To(Equal(2))
		})

		It("clears a previous failure message when resetting", func() {
			user, _ := store.Append(chat.AuthorUser, "question")
			slot, _ := store.ReplySlotFor(user.ID)
			Expect(store.SetFailed(slot.ID, "timed out")).To(Succeed())

			again, _ := store.ReplySlotFor(user.ID)
			Expect(again.ErrText).To(BeEmpty())
		})

		It("inserts mid-conversation when the user turn is not last", func() {
			first, _ := store.Append(chat.AuthorUser, "first")
			second, _ := store.Append(chat.AuthorUser, "second")

			slot, err := store.ReplySlotFor(first.ID)
			Expect(err).NotTo(HaveOccurred())

			turns := store.Turns()
			Expect(turns).To(HaveLen(3))
			Expect(turns[0].ID).To(Equal(first.ID))
			Expect(turns[1].ID).To(Equal(slot.ID))
			Expect(turns[2].ID).To(Equal(second.ID))
		})

		It("fails for assistant turns", func() {
			turn, _ := store.Append(chat.AuthorAssistant, "")

			_, err := store.ReplySlotFor(turn.ID)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("SetComplete and SetFailed", func() {
		var slot chat.Turn

		BeforeEach(func() {
			user, _ := store.Append(chat.AuthorUser, "question")
			slot, _ = store.ReplySlotFor(user.ID)
		})

		It("records a successful completion", func() {
			Expect(store.SetComplete(slot.ID, "the answer")).To(Succeed())

			got, _ := store.Get(slot.ID)
			Expect(got.Status).To(Equal(chat.StatusComplete))
			Expect(got.Text).To(Equal("the answer"))
		})

		It("records a failure with its message", func() {
			Expect(store.SetFailed(slot.ID, "network: timed out")).To(Succeed())

			got, _ := store.Get(slot.ID)
			Expect(got.Status).To(Equal(chat.StatusFailed))
			Expect(got.ErrText).To(Equal("network: timed out"))
		})

		It("refuses to overwrite a terminal status", func() {
			Expect(store.SetComplete(slot.ID, "first")).To(Succeed())

			Expect(store.SetComplete(slot.ID, "second")).NotTo(Succeed())
			Expect(store.SetFailed(slot.ID, "late failure")).NotTo(Succeed())

			got, _ := store.Get(slot.ID)
			Expect(got.Text).To(Equal("first"))
		})

		It("refuses user turns", func() {
			user, _ := store.Append(chat.AuthorUser, "question")
			Expect(store.SetComplete(user.ID, "text")).NotTo(Succeed())
		})
	})

	Describe("Clear", func() {
		It("empties the conversation regardless of prior state", func() {
			user, _ := store.Append(chat.AuthorUser, "question")
			_, _ = store.ReplySlotFor(user.ID)

			store.Clear()

			Expect(store.Len()).To(Equal(0))
			Expect(store.Turns()).To(BeEmpty())
		})
	})

	Describe("TurnsThrough", func() {
		It("truncates to the given turn and earlier", func() {
			first, _ := store.Append(chat.AuthorUser, "first")
			firstSlot, _ := store.ReplySlotFor(first.ID)
			second, _ := store.Append(chat.AuthorUser, "second")
			_, _ = store.ReplySlotFor(second.ID)

			turns, err := store.TurnsThrough(firstSlot.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(turns).To(HaveLen(2))
			Expect(turns[1].ID).To(Equal(firstSlot.ID))
		})

		It("fails for unknown ids", func() {
			_, err := store.TurnsThrough("missing")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("notifications", func() {
		It("notifies observers on every mutation", func() {
			var events []chat.Event
			store.Subscribe(func(e chat.Event) {
				events = append(events, e)
			})

			user, _ := store.Append(chat.AuthorUser, "hello")
			slot, _ := store.ReplySlotFor(user.ID)
			_ = store.SetComplete(slot.ID, "hi there")
			_ = store.Edit(user.ID, "hello again")
			store.Clear()

			Expect(events).To(HaveLen(5))
			Expect(events[0].TurnID).To(Equal(user.ID))
			Expect(events[0].Status).To(Equal(chat.StatusComplete))
			Expect(events[1].Status).To(Equal(chat.StatusPending))
			Expect(events[2].Text).To(Equal("hi there"))
			Expect(events[3].Text).To(Equal("hello again"))
			Expect(events[4].TurnID).To(BeEmpty())
		})
	})
})
