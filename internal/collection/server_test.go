package collection

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"cointracker/internal/scanning"
)

var _ = Describe("Server", func() {
	var (
		db      *mockDB
		scanner *mockScanner
		server  *Server
	)

	BeforeEach(func() {
		db = newMockDB()
		scanner = &mockScanner{}

		service, err := NewServiceWithDeps(newTestCatalog(), db, scanner, &sequenceIDGen{})
		Expect(err).NotTo(HaveOccurred())
		server = NewServer(service, BasicAuth{})
	})

	postJSON := func(path string, body any) *httptest.ResponseRecorder {
		data, err := json.Marshal(body)
		Expect(err).NotTo(HaveOccurred())
		req := httptest.NewRequest("POST", path, bytes.NewReader(data))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)
		return rec
	}

	decodeOutcome := func(rec *httptest.ResponseRecorder) Outcome {
		var out Outcome
		Expect(json.NewDecoder(rec.Body).Decode(&out)).To(Succeed())
		return out
	}

	Describe("POST /api/submissions/text", func() {
		It("resolves a typed guess", func() {
			rec := postJSON("/api/submissions/text", submitRequest{
				Value: "2 euro", Country: "Spanien", Year: "2010",
			})
			Expect(rec.Code).To(Equal(http.StatusOK))

			out := decodeOutcome(rec)
			Expect(out.Status).To(Equal(StatusUniqueMatch))
			Expect(out.Variant.Country).To(BeEquivalentTo("spain"))
		})

		It("reports field errors in the outcome, not as an HTTP error", func() {
			rec := postJSON("/api/submissions/text", submitRequest{
				Value: "3 euro", Country: "spain", Year: "2010",
			})
			Expect(rec.Code).To(Equal(http.StatusOK))

			out := decodeOutcome(rec)
			Expect(out.Status).To(Equal(StatusNoMatch))
			Expect(out.FieldErrors).To(HaveLen(1))
		})

		It("rejects a malformed body", func() {
			req := httptest.NewRequest("POST", "/api/submissions/text", strings.NewReader("{"))
			rec := httptest.NewRecorder()
			server.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("POST /api/submissions", func() {
		newUpload := func(field, filename, asDuplicate string) *http.Request {
			var buf bytes.Buffer
			writer := multipart.NewWriter(&buf)
			part, err := writer.CreateFormFile(field, filename)
			Expect(err).NotTo(HaveOccurred())
			_, err = part.Write([]byte("fake image bytes"))
			Expect(err).NotTo(HaveOccurred())
			if asDuplicate != "" {
				Expect(writer.WriteField("as_duplicate", asDuplicate)).To(Succeed())
			}
			Expect(writer.Close()).To(Succeed())

			req := httptest.NewRequest("POST", "/api/submissions", &buf)
			req.Header.Set("Content-Type", writer.FormDataContentType())
			return req
		}

		It("scans an uploaded photo and resolves it", func() {
			scanner.data = &scanning.CoinData{Value: "50 cent", Country: "France", Year: "2001"}

			rec := httptest.NewRecorder()
			server.ServeHTTP(rec, newUpload("file", "coin.jpg", ""))
			Expect(rec.Code).To(Equal(http.StatusOK))

			out := decodeOutcome(rec)
			Expect(out.Status).To(Equal(StatusUniqueMatch))
		})

		It("passes the duplicate flag through", func() {
			scanner.data = &scanning.CoinData{Value: "50 cent", Country: "France", Year: "2001"}

			rec := httptest.NewRecorder()
			server.ServeHTTP(rec, newUpload("file", "coin.jpg", ""))
			Expect(rec.Code).To(Equal(http.StatusOK))

			rec = httptest.NewRecorder()
			server.ServeHTTP(rec, newUpload("file", "coin.jpg", "true"))
			Expect(rec.Code).To(Equal(http.StatusOK))

			out := decodeOutcome(rec)
			Expect(out.Status).To(Equal(StatusAlreadyOwned))
			Expect(out.Record.Quantity).To(Equal(2))
		})

		It("rejects a request without a file", func() {
			rec := httptest.NewRecorder()
			server.ServeHTTP(rec, newUpload("wrong_field", "coin.jpg", ""))
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("maps scanner failures to a bad gateway", func() {
			scanner.scanErr = errors.New("scan failed")

			rec := httptest.NewRecorder()
			server.ServeHTTP(rec, newUpload("file", "coin.jpg", ""))
			Expect(rec.Code).To(Equal(http.StatusBadGateway))
		})
	})

	Describe("POST /api/choices", func() {
		It("marks the picked candidate owned", func() {
			rec := postJSON("/api/choices", choiceRequest{
				Value: "2 euro", Country: "germany", Year: 2015, Mint: "f",
			})
			Expect(rec.Code).To(Equal(http.StatusOK))

			out := decodeOutcome(rec)
			Expect(out.Status).To(Equal(StatusUniqueMatch))
			Expect(out.Variant.Mint).To(Equal("F"))
		})

		It("rejects a non-canonical denomination", func() {
			rec := postJSON("/api/choices", choiceRequest{
				Value: "2€", Country: "germany", Year: 2015, Mint: "F",
			})
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("GET /api/stats", func() {
		It("reports totals and breakdowns", func() {
			postJSON("/api/submissions/text", submitRequest{Value: "2 euro", Country: "spain", Year: "2010"})

			req := httptest.NewRequest("GET", "/api/stats", nil)
			rec := httptest.NewRecorder()
			server.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusOK))

			var resp statsResponse
			Expect(json.NewDecoder(rec.Body).Decode(&resp)).To(Succeed())
			Expect(resp.Stats.OwnedCount).To(Equal(1))
			Expect(resp.Breakdown.ByValue).To(HaveLen(8))
		})
	})

	Describe("GET /api/events", func() {
		It("returns the audit log oldest first", func() {
			postJSON("/api/submissions/text", submitRequest{Value: "2 euro", Country: "spain", Year: "2010"})
			postJSON("/api/submissions/text", submitRequest{Value: "2 euro", Country: "spain", Year: "2010"})

			req := httptest.NewRequest("GET", "/api/events", nil)
			rec := httptest.NewRecorder()
			server.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusOK))

			var events []*SubmissionEvent
			Expect(json.NewDecoder(rec.Body).Decode(&events)).To(Succeed())
			Expect(events).To(HaveLen(2))
			Expect(events[0].Status).To(Equal(StatusUniqueMatch))
			Expect(events[1].Status).To(Equal(StatusAlreadyOwned))
		})
	})

	Describe("GET /api/series", func() {
		It("lists one country-year series", func() {
			req := httptest.NewRequest("GET", "/api/series?country=Spanien&year=2010", nil)
			rec := httptest.NewRecorder()
			server.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusOK))

			var series []VariantStatus
			Expect(json.NewDecoder(rec.Body).Decode(&series)).To(Succeed())
			Expect(series).To(HaveLen(8))
		})

		It("rejects an unknown country", func() {
			req := httptest.NewRequest("GET", "/api/series?country=atlantis", nil)
			rec := httptest.NewRecorder()
			server.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("authentication", func() {
		BeforeEach(func() {
			service, err := NewServiceWithDeps(newTestCatalog(), db, scanner, &sequenceIDGen{})
			Expect(err).NotTo(HaveOccurred())
			server = NewServer(service, BasicAuth{Username: "collector", Password: "secret"})
		})

		It("rejects requests without credentials", func() {
			req := httptest.NewRequest("GET", "/api/stats", nil)
			rec := httptest.NewRecorder()
			server.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})

		It("accepts valid credentials", func() {
			req := httptest.NewRequest("GET", "/api/stats", nil)
			req.SetBasicAuth("collector", "secret")
			rec := httptest.NewRecorder()
			server.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusOK))
		})

		It("rejects wrong credentials", func() {
			req := httptest.NewRequest("GET", "/api/stats", nil)
			req.SetBasicAuth("collector", "wrong")
			rec := httptest.NewRecorder()
			server.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})
	})
})
