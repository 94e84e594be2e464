package permit_test

import (
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	apperrors "github.com/frahmantamala/vehicle-permit/internal"
	"github.com/frahmantamala/vehicle-permit/internal/permit"
)

var _ = Describe("DateRangeDTO", func() {
	// Wednesday
	now := time.Date(2024, 1, 17, 14, 0, 0, 0, time.UTC)

	DescribeTable("presets",
		func(filterType, wantStart, wantEnd string) {
			start, end, appErr := permit.DateRangeDTO{FilterType: filterType}.Resolve(now)
			Expect(appErr).To(BeNil())
			Expect(start.String()).To(Equal(wantStart))
			Expect(end.String()).To(Equal(wantEnd))
		},
		Entry("today", permit.RangeToday, "2024-01-17", "2024-01-17"),
		Entry("this week starts on Sunday", permit.RangeThisWeek, "2024-01-14", "2024-01-20"),
		Entry("this month", permit.RangeThisMonth, "2024-01-01", "2024-01-31"),
	)

	It("uses explicit bounds for custom ranges", func() {
		start, end, appErr := permit.DateRangeFromQuery(url.Values{
			"filter_type": {"custom"},
			"start":       {"2024-01-15"},
			"end":         {"2024-01-16"},
		}).Resolve(now)
		Expect(appErr).To(BeNil())
		Expect(start.String()).To(Equal("2024-01-15"))
		Expect(end.String()).To(Equal("2024-01-16"))
	})

	It("rejects reversed bounds", func() {
		_, _, appErr := permit.DateRangeDTO{Start: "2024-01-16", End: "2024-01-15"}.Resolve(now)
		Expect(errors.Is(appErr, apperrors.ErrInvalidDateRange)).To(BeTrue())
	})

	It("rejects unknown presets", func() {
		_, _, appErr := permit.DateRangeDTO{FilterType: "yesterday"}.Resolve(now)
		Expect(appErr).NotTo(BeNil())
		Expect(appErr.GetDetailedMessage()).To(ContainSubstring("filter_type"))
	})

	It("requires both bounds for custom ranges", func() {
		_, _, appErr := permit.DateRangeDTO{Start: "2024-01-16"}.Resolve(now)
		Expect(appErr).NotTo(BeNil())
	})
})

var _ = Describe("FilterFromQuery", func() {
	It("accepts known statuses", func() {
		f, appErr := permit.FilterFromQuery(url.Values{"status": {"Ditolak"}, "nik": {"001"}})
		Expect(appErr).To(BeNil())
		Expect(f.Status).To(Equal(permit.StatusRejected))
		Expect(f.NIK).To(Equal("001"))
	})

	It("rejects unknown statuses", func() {
		_, appErr := permit.FilterFromQuery(url.Values{"status": {"Approved"}})
		Expect(appErr).NotTo(BeNil())
		Expect(appErr.GetDetailedMessage()).To(Equal("status must be one of: Pending, Disetujui, Ditolak"))
	})
})

var _ = Describe("CreatePermitDTO", func() {
	It("accepts a nik that fills the column", func() {
		dto := validDTO()
		dto.NIK = strings.Repeat("1", 32)
		Expect(dto.Validate()).To(BeNil())
	})

	It("rejects a nik longer than the column", func() {
		dto := validDTO()
		dto.NIK = strings.Repeat("1", 33)
		appErr := dto.Validate()
		Expect(appErr).NotTo(BeNil())
		details, ok := appErr.Details.(apperrors.ValidationErrors)
		Expect(ok).To(BeTrue())
		Expect(details.Errors[0].Field).To(Equal("nik"))
	})
})

var _ = Describe("DecideDTO", func() {
	It("accepts both terminal outcomes", func() {
		Expect(permit.DecideDTO{Status: "Disetujui"}.Validate()).To(BeNil())
		Expect(permit.DecideDTO{Status: "Ditolak"}.Validate()).To(BeNil())
	})

	It("reports a non-terminal outcome as an invalid status", func() {
		appErr := permit.DecideDTO{Status: "Pending"}.Validate()
		Expect(appErr).NotTo(BeNil())
		details, ok := appErr.Details.(apperrors.ValidationErrors)
		Expect(ok).To(BeTrue())
		Expect(details.Errors[0].Field).To(Equal("status"))
		Expect(details.Errors[0].Code).To(Equal(string(apperrors.ErrCodeInvalidStatus)))
	})
})

var _ = Describe("Date", func() {
	It("serializes as YYYY-MM-DD", func() {
		d, err := permit.ParseDate("2024-02-29")
		Expect(err).NotTo(HaveOccurred())

		b, err := json.Marshal(struct {
			D permit.Date  `json:"d"`
			P *permit.Date `json:"p"`
		}{D: d})
		Expect(err).NotTo(HaveOccurred())
		Expect(string(b)).To(Equal(`{"d":"2024-02-29","p":null}`))
	})
})
