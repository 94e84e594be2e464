package export

import (
	"sort"
	"strconv"

	"github.com/frahmantamala/vehicle-permit/internal/permit"
)

// Header is the fixed 15-column layout of every export.
var Header = []string{
	"No",
	"Nama Pemakai",
	"NIK",
	"Nama Sopir",
	"Nomor Polisi",
	"Tujuan",
	"Tanggal Berangkat",
	"Jam Berangkat",
	"Tanggal Kembali",
	"Jam Kembali",
	"Keterangan",
	"Status",
	"Tanggal Persetujuan",
	"Jam Persetujuan",
	"Tanggal Dibuat",
}

const (
	placeholder = "-"
	dateLayout  = "2/1/2006"
)

// SortByDeparture orders permits by departure instant, oldest first.
func SortByDeparture(permits []*permit.PermitRequest) {
	sort.SliceStable(permits, func(i, j int) bool {
		a, b := permits[i].Departure(), permits[j].Departure()
		if a.Equal(b) {
			return permits[i].ID < permits[j].ID
		}
		return a.Before(b)
	})
}

// Rows renders permits as table rows, header first.
func Rows(permits []*permit.PermitRequest) [][]string {
	rows := make([][]string, 0, len(permits)+1)
	rows = append(rows, Header)
	for i, p := range permits {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			p.RequesterName,
			p.NIK,
			p.DriverName,
			p.PlateNumber,
			p.Purpose,
			p.DepartureDate.Format(dateLayout),
			p.DepartureTime,
			p.ReturnDate.Format(dateLayout),
			p.ReturnTime,
			orPlaceholder(p.Remarks),
			string(p.Status),
			approvalDate(p),
			orPlaceholder(p.ApprovalTime),
			p.CreatedAt.Format(dateLayout),
		})
	}
	return rows
}

func orPlaceholder(s *string) string {
	if s == nil || *s == "" {
		return placeholder
	}
	return *s
}

func approvalDate(p *permit.PermitRequest) string {
	if p.ApprovalDate == nil {
		return placeholder
	}
	return p.ApprovalDate.Format(dateLayout)
}
