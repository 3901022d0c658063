package collection

import (
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"cointracker/internal/catalog"
	"cointracker/internal/normalize"
)

var _ = Describe("BoltDB", func() {
	var db *BoltDB

	BeforeEach(func() {
		var err error
		db, err = NewBoltDB(filepath.Join(GinkgoT().TempDir(), "coins.db"))
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(db.Close)
	})

	Describe("ownership records", func() {
		key := catalog.Key{Value: catalog.Euro2, Country: "spain", Year: 2010}

		It("round-trips a record", func() {
			rec := &catalog.OwnershipRecord{
				Owned:           true,
				Quantity:        2,
				FirstAcquiredAt: testNow,
				Notes:           "flea market find",
			}
			Expect(db.SaveRecord(key.String(), rec)).To(Succeed())

			records, err := db.ListRecords()
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(1))
			Expect(records[key.String()]).To(Equal(rec))
		})

		It("overwrites on repeated saves", func() {
			first := &catalog.OwnershipRecord{Owned: true, Quantity: 1, FirstAcquiredAt: testNow}
			Expect(db.SaveRecord(key.String(), first)).To(Succeed())

			second := &catalog.OwnershipRecord{Owned: true, Quantity: 2, FirstAcquiredAt: testNow}
			Expect(db.SaveRecord(key.String(), second)).To(Succeed())

			records, err := db.ListRecords()
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(1))
			Expect(records[key.String()].Quantity).To(Equal(2))
		})

		It("lists nothing from a fresh database", func() {
			records, err := db.ListRecords()
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(BeEmpty())
		})
	})

	Describe("submission events", func() {
		It("returns events oldest first regardless of insertion order", func() {
			later := &SubmissionEvent{
				ID: "b", At: testNow.Add(time.Hour), Status: StatusAlreadyOwned,
			}
			earlier := &SubmissionEvent{
				ID: "a", At: testNow, Status: StatusUniqueMatch,
				Guess:      normalize.Guess{RawValue: "2 euro", RawCountry: "spain", RawYear: "2010"},
				VariantKey: "spain|2010|2 euro|",
			}
			Expect(db.SaveEvent(later)).To(Succeed())
			Expect(db.SaveEvent(earlier)).To(Succeed())

			events, err := db.ListEvents()
			Expect(err).NotTo(HaveOccurred())
			Expect(events).To(HaveLen(2))
			Expect(events[0].ID).To(Equal("a"))
			Expect(events[0].Guess.RawCountry).To(Equal("spain"))
			Expect(events[1].ID).To(Equal("b"))
		})

		It("keeps events with identical timestamps apart", func() {
			Expect(db.SaveEvent(&SubmissionEvent{ID: "a", At: testNow})).To(Succeed())
			Expect(db.SaveEvent(&SubmissionEvent{ID: "b", At: testNow})).To(Succeed())

			events, err := db.ListEvents()
			Expect(err).NotTo(HaveOccurred())
			Expect(events).To(HaveLen(2))
		})
	})

	It("persists across reopen", func() {
		path := filepath.Join(GinkgoT().TempDir(), "reopen.db")
		first, err := NewBoltDB(path)
		Expect(err).NotTo(HaveOccurred())

		key := catalog.Key{Value: catalog.Cent50, Country: "france", Year: 2001}
		rec := &catalog.OwnershipRecord{Owned: true, Quantity: 1, FirstAcquiredAt: testNow}
		Expect(first.SaveRecord(key.String(), rec)).To(Succeed())
		Expect(first.Close()).To(Succeed())

		second, err := NewBoltDB(path)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(second.Close)

		records, err := second.ListRecords()
		Expect(err).NotTo(HaveOccurred())
		Expect(records[key.String()]).To(Equal(rec))
	})
})
