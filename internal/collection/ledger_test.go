package collection

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"cointracker/internal/catalog"
)

var _ = Describe("Ledger", func() {
	var (
		cat    *catalog.Catalog
		db     *mockDB
		ledger *Ledger
	)

	spain2010 := catalog.Key{Value: catalog.Euro2, Country: "spain", Year: 2010}

	BeforeEach(func() {
		cat = newTestCatalog()
		db = newMockDB()

		var err error
		ledger, err = NewLedger(cat, db)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("NewLedger", func() {
		It("loads previously stored records", func() {
			db.records[spain2010.String()] = &catalog.OwnershipRecord{
				Owned: true, Quantity: 3, FirstAcquiredAt: testNow,
			}

			loaded, err := NewLedger(cat, db)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.Record(spain2010).Quantity).To(Equal(3))
		})

		It("rejects records for variants outside the catalog", func() {
			key := catalog.Key{Value: catalog.Euro2, Country: "san marino", Year: 1999}
			db.records[key.String()] = &catalog.OwnershipRecord{Owned: true, Quantity: 1}

			_, err := NewLedger(cat, db)
			Expect(err).To(MatchError(ContainSubstring("no such variant")))
		})

		It("rejects records violating the quantity invariants", func() {
			db.records[spain2010.String()] = &catalog.OwnershipRecord{Owned: true, Quantity: 0}

			_, err := NewLedger(cat, db)
			Expect(err).To(HaveOccurred())
		})

		It("rejects malformed stored keys", func() {
			db.records["not a key"] = &catalog.OwnershipRecord{Owned: true, Quantity: 1}

			_, err := NewLedger(cat, db)
			Expect(err).To(MatchError(ContainSubstring("malformed")))
		})

		It("fails when the store cannot be read", func() {
			db.listErr = errors.New("corrupt file")

			_, err := NewLedger(cat, db)
			Expect(err).To(MatchError(ContainSubstring("corrupt file")))
		})
	})

	Describe("MarkOwned", func() {
		It("sets quantity 1 and stamps first acquisition on the first call", func() {
			rec, err := ledger.MarkOwned(spain2010, testNow, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.Owned).To(BeTrue())
			Expect(rec.Quantity).To(Equal(1))
			Expect(rec.FirstAcquiredAt).To(Equal(testNow))
		})

		It("is idempotent without the duplicate flag", func() {
			_, err := ledger.MarkOwned(spain2010, testNow, false)
			Expect(err).NotTo(HaveOccurred())

			rec, err := ledger.MarkOwned(spain2010, testNow.Add(time.Hour), false)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.Quantity).To(Equal(1))
			Expect(rec.FirstAcquiredAt).To(Equal(testNow))
		})

		It("increments quantity on a duplicate, keeping the first timestamp", func() {
			_, err := ledger.MarkOwned(spain2010, testNow, false)
			Expect(err).NotTo(HaveOccurred())

			rec, err := ledger.MarkOwned(spain2010, testNow.Add(time.Hour), true)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.Quantity).To(Equal(2))
			Expect(rec.FirstAcquiredAt).To(Equal(testNow))
		})

		It("treats a duplicate of an unowned variant as a first acquisition", func() {
			rec, err := ledger.MarkOwned(spain2010, testNow, true)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.Quantity).To(Equal(1))
		})

		It("rejects keys outside the catalog", func() {
			bogus := catalog.Key{Value: catalog.Euro2, Country: "germany", Year: 2015}
			_, err := ledger.MarkOwned(bogus, testNow, false)
			Expect(err).To(MatchError(ContainSubstring("no such variant")))
		})

		It("persists before mutating memory", func() {
			db.saveErr = errors.New("disk full")

			_, err := ledger.MarkOwned(spain2010, testNow, false)
			Expect(err).To(MatchError(ContainSubstring("disk full")))
			Expect(ledger.Record(spain2010).Owned).To(BeFalse())
			Expect(ledger.Stats().OwnedCount).To(BeZero())
		})
	})

	Describe("Stats", func() {
		It("counts the full universe with nothing owned", func() {
			stats := ledger.Stats()
			Expect(stats.TotalVariants).To(Equal(cat.Len()))
			Expect(stats.MissingCount).To(Equal(cat.Len()))
			Expect(stats.CompletionRatio).To(BeZero())
		})

		It("counts variants, not physical coins", func() {
			_, err := ledger.MarkOwned(spain2010, testNow, false)
			Expect(err).NotTo(HaveOccurred())
			_, err = ledger.MarkOwned(spain2010, testNow, true)
			Expect(err).NotTo(HaveOccurred())

			Expect(ledger.Stats().OwnedCount).To(Equal(1))
		})
	})

	Describe("Missing", func() {
		It("excludes owned variants and keeps catalog order", func() {
			_, err := ledger.MarkOwned(spain2010, testNow, false)
			Expect(err).NotTo(HaveOccurred())

			missing := ledger.Missing()
			Expect(missing).To(HaveLen(cat.Len() - 1))
			for _, v := range missing {
				Expect(v.Key).NotTo(Equal(spain2010))
			}
		})
	})

	Describe("StatsBreakdown", func() {
		It("groups by country, year and value", func() {
			_, err := ledger.MarkOwned(spain2010, testNow, false)
			Expect(err).NotTo(HaveOccurred())

			b := ledger.StatsBreakdown()
			Expect(b.ByCountry).To(HaveLen(24))
			Expect(b.ByValue).To(HaveLen(8))

			var spain GroupStat
			for _, g := range b.ByCountry {
				if g.Label == "spain" {
					spain = g
				}
			}
			Expect(spain.Owned).To(Equal(1))
			Expect(spain.Total).To(Equal((testYear - 1999 + 1) * 8))
		})

		It("orders values by face value", func() {
			b := ledger.StatsBreakdown()
			Expect(b.ByValue[0].Label).To(Equal("1 cent"))
			Expect(b.ByValue[7].Label).To(Equal("2 euro"))
		})
	})
})
