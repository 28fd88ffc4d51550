package statement

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/kdunlop/statement-scan/internal/extract"
)

var _ = Describe("BoltDB", func() {
	var (
		tempDir string
		db      *BoltDB
		err     error
	)

	BeforeEach(func() {
		tempDir, err = os.MkdirTemp("", "statement-scan-db-*")
		Expect(err).NotTo(HaveOccurred())

		db, err = NewBoltDB(filepath.Join(tempDir, "test.db"))
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		db.Close()
		os.RemoveAll(tempDir)
	})

	newUpload := func(id string) *Upload {
		return &Upload{
			ID:          id,
			Filename:    id + "_statement.pdf",
			ContentType: "application/pdf",
			Text:        "07/15/2025 Grocery Store 1234.50",
			Candidates: []extract.Candidate{{
				Amount:      decimal.RequireFromString("1234.50"),
				Direction:   extract.Expense,
				Date:        time.Date(2025, time.July, 15, 0, 0, 0, 0, time.UTC),
				Category:    "Grocery Store",
				Description: "07/15/2025 Grocery Store 1234.50",
			}},
			CreatedAt: time.Now().UTC(),
		}
	}

	Describe("uploads", func() {
		It("round-trips an upload with its candidates", func() {
			Expect(db.SaveUpload(newUpload("u1"))).To(Succeed())

			got, err := db.GetUpload("u1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Filename).To(Equal("u1_statement.pdf"))
			Expect(got.Candidates).To(HaveLen(1))
			Expect(got.Candidates[0].Amount.StringFixed(2)).To(Equal("1234.50"))
			Expect(got.Candidates[0].Direction).To(Equal(extract.Expense))
		})

		It("returns an error for a missing upload", func() {
			_, err := db.GetUpload("missing")
			Expect(err).To(MatchError(ContainSubstring("not found")))
		})

		It("lists all uploads", func() {
			Expect(db.SaveUpload(newUpload("u1"))).To(Succeed())
			Expect(db.SaveUpload(newUpload("u2"))).To(Succeed())

			uploads, err := db.ListUploads()
			Expect(err).NotTo(HaveOccurred())
			Expect(uploads).To(HaveLen(2))
		})

		It("deletes an upload", func() {
			Expect(db.SaveUpload(newUpload("u1"))).To(Succeed())
			Expect(db.DeleteUpload("u1")).To(Succeed())

			_, err := db.GetUpload("u1")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("reports", func() {
		It("round-trips a save report", func() {
			report := &SaveReport{
				ID:        "r1",
				UploadID:  "u1",
				Attempted: 3,
				Succeeded: 2,
				Failed:    1,
				Failures: []SaveFailure{{
					Index:       1,
					Description: "two 2.00",
					Reason:      "connection refused",
				}},
				CreatedAt: time.Now().UTC(),
			}
			Expect(db.SaveReport(report)).To(Succeed())

			got, err := db.GetReport("r1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Succeeded).To(Equal(2))
			Expect(got.Failures).To(HaveLen(1))
			Expect(got.Failures[0].Reason).To(Equal("connection refused"))
		})

		It("lists all reports", func() {
			Expect(db.SaveReport(&SaveReport{ID: "r1"})).To(Succeed())
			Expect(db.SaveReport(&SaveReport{ID: "r2"})).To(Succeed())

			reports, err := db.ListReports()
			Expect(err).NotTo(HaveOccurred())
			Expect(reports).To(HaveLen(2))
		})
	})
})
