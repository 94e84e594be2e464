package export_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/afero"
	"github.com/xuri/excelize/v2"

	apperrors "github.com/frahmantamala/vehicle-permit/internal"
	"github.com/frahmantamala/vehicle-permit/internal/export"
	"github.com/frahmantamala/vehicle-permit/internal/permit"
)

type stubSource struct {
	permits []*permit.PermitRequest
	err     error
	start   permit.Date
	end     permit.Date
}

func (s *stubSource) ListByDateRange(ctx context.Context, start, end permit.Date) ([]*permit.PermitRequest, error) {
	s.start, s.end = start, end
	if s.err != nil {
		return nil, s.err
	}
	return s.permits, nil
}

func mustDate(s string) permit.Date {
	d, err := permit.ParseDate(s)
	Expect(err).NotTo(HaveOccurred())
	return d
}

func strPtr(s string) *string { return &s }

var _ = Describe("Export Service", func() {
	var (
		fs      afero.Fs
		source  *stubSource
		service *export.Service
		now     time.Time
	)

	BeforeEach(func() {
		fs = afero.NewMemMapFs()
		source = &stubSource{}
		now = time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC)
		service = export.NewService(source, fs, apperrors.ExportConfig{
			Dir:           "public/exports",
			URLPrefix:     "/exports",
			DefaultFormat: "xlsx",
		}, slog.New(slog.NewTextHandler(io.Discard, nil))).WithClock(func() time.Time { return now })
	})

	readFile := func(name string) string {
		b, err := afero.ReadFile(fs, filepath.Join("public/exports", name))
		Expect(err).NotTo(HaveOccurred())
		return string(b)
	}

	Context("CSV", func() {
		It("writes requests in departure order with every field quoted", func() {
			// Given two requests stored out of departure order
			approvedOn := mustDate("2024-01-10")
			source.permits = []*permit.PermitRequest{
				{
					ID: 2, RequesterName: "Budi", NIK: "002", DriverName: "Joko", PlateNumber: "B 1 AB",
					Purpose: `Kunjungan "klien"`, DepartureDate: mustDate("2024-01-20"), DepartureTime: "08:00",
					ReturnDate: mustDate("2024-01-20"), ReturnTime: "17:00", Status: permit.StatusPending,
					CreatedAt: time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC),
				},
				{
					ID: 1, RequesterName: "Ani", NIK: "001", DriverName: "Sri", PlateNumber: "D 2 CD",
					Purpose: "Survei", DepartureDate: mustDate("2024-01-12"), DepartureTime: "07:00",
					ReturnDate: mustDate("2024-01-13"), ReturnTime: "12:00", Remarks: strPtr("Bawa dokumen"),
					Status: permit.StatusApproved, ApprovalDate: &approvedOn, ApprovalTime: strPtr("14:05"),
					CreatedAt: time.Date(2024, 1, 4, 10, 0, 0, 0, time.UTC),
				},
			}

			// When exporting January as CSV
			result, err := service.ExportRange(context.Background(), mustDate("2024-01-01"), mustDate("2024-01-31"), "csv")

			// Then the file is named after the range and the export day
			Expect(err).NotTo(HaveOccurred())
			Expect(result.FileName).To(Equal("vehicle_permits_2024-01-01_to_2024-01-31_2024-02-01.csv"))
			Expect(result.FileURL).To(Equal("/exports/vehicle_permits_2024-01-01_to_2024-01-31_2024-02-01.csv"))
			Expect(result.TotalRecords).To(Equal(2))

			lines := strings.Split(readFile(result.FileName), "\n")
			Expect(lines).To(HaveLen(3))
			Expect(lines[0]).To(HavePrefix(`"No","Nama Pemakai","NIK",`))
			Expect(lines[1]).To(Equal(`"1","Ani","001","Sri","D 2 CD","Survei","12/1/2024","07:00","13/1/2024","12:00","Bawa dokumen","Disetujui","10/1/2024","14:05","4/1/2024"`))
			Expect(lines[2]).To(Equal(`"2","Budi","002","Joko","B 1 AB","Kunjungan ""klien""","20/1/2024","08:00","20/1/2024","17:00","-","Pending","-","-","5/1/2024"`))
		})

		It("writes only the header for an empty range", func() {
			result, err := service.ExportRange(context.Background(), mustDate("2024-03-01"), mustDate("2024-03-31"), "csv")

			Expect(err).NotTo(HaveOccurred())
			Expect(result.TotalRecords).To(Equal(0))
			content := readFile(result.FileName)
			Expect(strings.Count(content, "\n")).To(Equal(0))
			Expect(strings.Count(content, `","`)).To(Equal(len(export.Header) - 1))
		})

		It("breaks departure ties by time of day", func() {
			day := mustDate("2024-01-15")
			source.permits = []*permit.PermitRequest{
				{ID: 1, DepartureDate: day, DepartureTime: "15:00", ReturnDate: day, ReturnTime: "16:00", Status: permit.StatusPending},
				{ID: 2, DepartureDate: day, DepartureTime: "06:00", ReturnDate: day, ReturnTime: "07:00", Status: permit.StatusPending},
			}

			result, err := service.ExportRange(context.Background(), day, day, "csv")

			Expect(err).NotTo(HaveOccurred())
			lines := strings.Split(readFile(result.FileName), "\n")
			Expect(lines[1]).To(ContainSubstring(`"06:00"`))
			Expect(lines[2]).To(ContainSubstring(`"15:00"`))
		})
	})

	Context("XLSX", func() {
		It("uses the configured default format and writes a readable workbook", func() {
			day := mustDate("2024-01-15")
			source.permits = []*permit.PermitRequest{
				{ID: 7, RequesterName: "Citra", NIK: "003", DepartureDate: day, DepartureTime: "08:00",
					ReturnDate: day, ReturnTime: "10:00", Status: permit.StatusRejected},
			}

			result, err := service.ExportRange(context.Background(), day, day, "")

			Expect(err).NotTo(HaveOccurred())
			Expect(result.FileName).To(HaveSuffix(".xlsx"))

			f, err := excelize.OpenReader(bytes.NewReader([]byte(readFile(result.FileName))))
			Expect(err).NotTo(HaveOccurred())
			defer f.Close()

			rows, err := f.GetRows("Izin Kendaraan")
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(2))
			Expect(rows[0]).To(Equal(export.Header))
			Expect(rows[1][1]).To(Equal("Citra"))
			Expect(rows[1][11]).To(Equal("Ditolak"))
		})
	})

	Context("failures", func() {
		It("rejects an unknown format", func() {
			_, err := service.ExportRange(context.Background(), mustDate("2024-01-01"), mustDate("2024-01-31"), "pdf")

			appErr, ok := apperrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(apperrors.ErrCodeValidationFailed))
		})

		It("reports a source failure as an export failure and writes nothing", func() {
			source.err = fmt.Errorf("connection reset")

			_, err := service.ExportRange(context.Background(), mustDate("2024-01-01"), mustDate("2024-01-31"), "csv")

			Expect(err).To(MatchError(apperrors.ErrExportFailed))
			exists, _ := afero.DirExists(fs, "public/exports")
			Expect(exists).To(BeFalse())
		})

		It("leaves no file behind when the filesystem is read-only", func() {
			service = export.NewService(source, afero.NewReadOnlyFs(fs), apperrors.ExportConfig{Dir: "public/exports"}, nil)

			_, err := service.ExportRange(context.Background(), mustDate("2024-01-01"), mustDate("2024-01-31"), "csv")

			Expect(err).To(MatchError(apperrors.ErrExportFailed))
			entries, _ := afero.Glob(fs, "public/exports/*")
			Expect(entries).To(BeEmpty())
		})
	})
})
