package statement

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kdunlop/statement-scan/internal/extract"
	"github.com/kdunlop/statement-scan/internal/scanning"
)

func multipartUpload(filename string, data []byte) (*http.Request, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req := httptest.NewRequest("POST", "/api/uploads", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req, nil
}

var _ = Describe("Server", func() {
	var (
		db      *mockDB
		storage *mockStorage
		scanner *mockScanner
		saver   *mockSaver
		server  *Server
	)

	newServer := func(auth BasicAuth) *Server {
		now := time.Date(2025, time.August, 31, 12, 0, 0, 0, time.UTC)
		parser := extract.NewLineParserWithDeps(extract.BalanceTrailing{}, func() time.Time { return now })
		service := NewServiceWithDeps(
			db, scanner, storage,
			NewBulkPersister(saver, time.Second),
			extract.NewClassifier(parser),
			&fixedIDGenerator{ids: []string{"upload-1", "report-1"}},
			&fixedTimeSource{t: now},
		)
		return NewServer(service, auth)
	}

	BeforeEach(func() {
		db = newMockDB()
		storage = newMockStorage()
		scanner = &mockScanner{result: &scanning.ScanResult{Text: statementText}}
		saver = newMockSaver()
		server = newServer(BasicAuth{})
	})

	Describe("POST /api/uploads", func() {
		It("processes the file and returns the candidate preview", func() {
			req, err := multipartUpload("statement.pdf", []byte("pdf-bytes"))
			Expect(err).NotTo(HaveOccurred())

			rec := httptest.NewRecorder()
			server.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusCreated))

			var upload Upload
			Expect(json.Unmarshal(rec.Body.Bytes(), &upload)).To(Succeed())
			Expect(upload.ID).To(Equal("upload-1"))
			Expect(upload.Candidates).To(HaveLen(2))
		})

		It("rejects requests without a file", func() {
			req := httptest.NewRequest("POST", "/api/uploads", nil)
			rec := httptest.NewRecorder()
			server.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("POST /api/uploads/{id}/transactions", func() {
		JustBeforeEach(func() {
			req, err := multipartUpload("statement.pdf", []byte("pdf-bytes"))
			Expect(err).NotTo(HaveOccurred())
			rec := httptest.NewRecorder()
			server.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusCreated))
		})

		It("saves the candidates and returns the report message", func() {
			req := httptest.NewRequest("POST", "/api/uploads/upload-1/transactions", nil)
			rec := httptest.NewRecorder()
			server.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))

			var response struct {
				Message string     `json:"message"`
				Report  SaveReport `json:"report"`
			}
			Expect(json.Unmarshal(rec.Body.Bytes(), &response)).To(Succeed())
			Expect(response.Message).To(Equal("Saved 2 transactions"))
			Expect(response.Report.Attempted).To(Equal(2))
			Expect(saver.callCount()).To(Equal(2))
		})

		It("returns 404 for an unknown upload", func() {
			req := httptest.NewRequest("POST", "/api/uploads/missing/transactions", nil)
			rec := httptest.NewRecorder()
			server.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("GET /api/uploads", func() {
		It("returns an empty array when nothing was uploaded", func() {
			req := httptest.NewRequest("GET", "/api/uploads", nil)
			rec := httptest.NewRecorder()
			server.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(MatchJSON("[]"))
		})
	})

	Describe("DELETE /api/uploads/{id}", func() {
		It("removes the upload", func() {
			req, err := multipartUpload("statement.pdf", []byte("pdf-bytes"))
			Expect(err).NotTo(HaveOccurred())
			rec := httptest.NewRecorder()
			server.ServeHTTP(rec, req)

			req = httptest.NewRequest("DELETE", "/api/uploads/upload-1", nil)
			rec = httptest.NewRecorder()
			server.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusNoContent))
			Expect(db.uploads).To(BeEmpty())
		})
	})

	Describe("basic auth", func() {
		BeforeEach(func() {
			server = newServer(BasicAuth{Username: "user", Password: "secret"})
		})

		It("rejects unauthenticated requests", func() {
			req := httptest.NewRequest("GET", "/api/uploads", nil)
			rec := httptest.NewRecorder()
			server.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(rec.Header().Get("WWW-Authenticate")).To(ContainSubstring("Basic"))
		})

		It("accepts valid credentials", func() {
			req := httptest.NewRequest("GET", "/api/uploads", nil)
			req.SetBasicAuth("user", "secret")
			rec := httptest.NewRecorder()
			server.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
		})

		It("rejects wrong credentials", func() {
			req := httptest.NewRequest("GET", "/api/uploads", nil)
			req.SetBasicAuth("user", "wrong")
			rec := httptest.NewRecorder()
			server.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})
	})
})
