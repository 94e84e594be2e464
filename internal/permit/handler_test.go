package permit_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	apperrors "github.com/frahmantamala/vehicle-permit/internal"
	"github.com/frahmantamala/vehicle-permit/internal/permit"
	"github.com/frahmantamala/vehicle-permit/internal/user"
)

var _ = Describe("Permit Handler", func() {
	var (
		router    *chi.Mux
		repo      *mockPermitRepository
		principal *apperrors.Principal
	)

	withPrincipal := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if principal != nil {
				r = r.WithContext(apperrors.ContextWithPrincipal(r.Context(), principal))
			}
			next.ServeHTTP(w, r)
		})
	}

	do := func(method, path string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	decodeError := func(rec *httptest.ResponseRecorder) string {
		var resp struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		return resp.Error.Code
	}

	BeforeEach(func() {
		repo = newMockPermitRepository()
		lg := slog.New(slog.NewTextHandler(io.Discard, nil))
		now := func() time.Time { return time.Date(2024, 1, 17, 10, 0, 0, 0, time.UTC) }
		workflow := permit.NewService(repo, nil, nil, lg).WithClock(now)
		query := permit.NewQueryService(repo, repo).WithClock(now)
		h := permit.NewHandler(workflow, query)
		h.Logger = lg

		principal = &apperrors.Principal{UserID: 1, NIK: "001", Role: user.RoleEmployee}

		router = chi.NewRouter()
		router.Use(withPrincipal)
		router.Post("/permits", h.CreatePermit)
		router.Get("/permits", h.ListPermits)
		router.Get("/permits/search", h.SearchPermits)
		router.Get("/permits/range", h.ListPermitsByRange)
		router.Get("/permits/{id}", h.GetPermit)
		router.Patch("/permits/{id}/status", h.DecidePermit)
		router.Get("/reports/summary", h.Summary)
	})

	It("creates a permit and returns 201", func() {
		rec := do(http.MethodPost, "/permits", validDTO())
		Expect(rec.Code).To(Equal(http.StatusCreated))

		var p map[string]interface{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &p)).To(Succeed())
		Expect(p["status"]).To(Equal("Pending"))
		Expect(p["departure_date"]).To(Equal("2024-01-15"))
		Expect(p["approval_date"]).To(BeNil())
	})

	It("returns 400 INVALID_DATE_RANGE for a reversed schedule", func() {
		dto := validDTO()
		dto.ReturnDate = "2024-01-14"
		rec := do(http.MethodPost, "/permits", dto)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(decodeError(rec)).To(Equal("INVALID_DATE_RANGE"))
	})

	It("rejects unknown body fields", func() {
		rec := do(http.MethodPost, "/permits", map[string]string{"nama": "x"})
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("returns 401 without a principal", func() {
		principal = nil
		rec := do(http.MethodPost, "/permits", validDTO())
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})

	It("returns 404 for a missing permit", func() {
		rec := do(http.MethodGet, "/permits/77", nil)
		Expect(rec.Code).To(Equal(http.StatusNotFound))
		Expect(decodeError(rec)).To(Equal("PERMIT_NOT_FOUND"))
	})

	It("returns 400 for a malformed id", func() {
		rec := do(http.MethodGet, "/permits/abc", nil)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	Context("deciding", func() {
		var id int64

		BeforeEach(func() {
			p, err := validDTO().ToPermit()
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.Create(context.Background(), p)).To(Succeed())
			id = p.ID
		})

		It("returns 403 for employees", func() {
			rec := do(http.MethodPatch, "/permits/1/status", permit.DecideDTO{Status: "Disetujui"})
			Expect(rec.Code).To(Equal(http.StatusForbidden))
			Expect(decodeError(rec)).To(Equal("INSUFFICIENT_PERMISSIONS"))
		})

		It("approves for HR and then reports 409", func() {
			principal = &apperrors.Principal{UserID: 2, NIK: "002", Role: user.RoleHR}
			rec := do(http.MethodPatch, "/permits/1/status", permit.DecideDTO{Status: "Disetujui"})
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(id).To(Equal(int64(1)))

			rec = do(http.MethodPatch, "/permits/1/status", permit.DecideDTO{Status: "Ditolak"})
			Expect(rec.Code).To(Equal(http.StatusConflict))
			Expect(decodeError(rec)).To(Equal("PERMIT_NOT_PENDING"))
		})

		It("filters by status", func() {
			rec := do(http.MethodGet, "/permits/search?status=Pending", nil)
			Expect(rec.Code).To(Equal(http.StatusOK))

			var resp struct {
				Total int `json:"total"`
			}
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Total).To(Equal(1))
		})

		It("lists by range preset", func() {
			rec := do(http.MethodGet, "/permits/range?filter_type=this_week", nil)
			Expect(rec.Code).To(Equal(http.StatusOK))

			var resp struct {
				Total int `json:"total"`
			}
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Total).To(Equal(1))
		})
	})

	It("returns an empty array rather than null", func() {
		rec := do(http.MethodGet, "/permits", nil)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"permits":[]`))
	})

	It("summarizes a custom range", func() {
		rec := do(http.MethodGet, "/reports/summary?start=2024-01-01&end=2024-01-31", nil)
		Expect(rec.Code).To(Equal(http.StatusOK))
	})
})
