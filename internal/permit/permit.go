package permit

import (
	"fmt"
	"time"

	errors "github.com/frahmantamala/vehicle-permit/internal"
	"github.com/frahmantamala/vehicle-permit/internal/core/common/validation"
	permitDatamodel "github.com/frahmantamala/vehicle-permit/internal/core/datamodel/permit"
)

type Status = permitDatamodel.Status

const (
	StatusPending  = permitDatamodel.StatusPending
	StatusApproved = permitDatamodel.StatusApproved
	StatusRejected = permitDatamodel.StatusRejected
)

// Date is a calendar day serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	t, err := validation.ParseDate(s)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

func (d Date) String() string {
	return d.Format(validation.DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("date must be a string")
	}
	parsed, err := ParseDate(string(b[1 : len(b)-1]))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

type PermitRequest struct {
	ID            int64     `json:"id"`
	RequesterName string    `json:"requester_name"`
	NIK           string    `json:"nik"`
	DriverName    string    `json:"driver_name"`
	PlateNumber   string    `json:"plate_number"`
	Purpose       string    `json:"purpose"`
	DepartureDate Date      `json:"departure_date"`
	DepartureTime string    `json:"departure_time"`
	ReturnDate    Date      `json:"return_date"`
	ReturnTime    string    `json:"return_time"`
	Remarks       *string   `json:"remarks"`
	Status        Status    `json:"status"`
	ApprovalDate  *Date     `json:"approval_date"`
	ApprovalTime  *string   `json:"approval_time"`
	CreatedAt     time.Time `json:"created_at"`
}

func (p *PermitRequest) IsPending() bool {
	return p.Status == StatusPending
}

// Departure returns the departure date and time as one instant.
func (p *PermitRequest) Departure() time.Time {
	return combine(p.DepartureDate, p.DepartureTime)
}

func (p *PermitRequest) Return() time.Time {
	return combine(p.ReturnDate, p.ReturnTime)
}

// CheckSchedule fails with ErrInvalidDateRange when the return precedes the departure.
func (p *PermitRequest) CheckSchedule() error {
	if p.Return().Before(p.Departure()) {
		return errors.ErrInvalidDateRange
	}
	return nil
}

// ApprovalConsistent reports whether the approval columns agree with the status.
func (p *PermitRequest) ApprovalConsistent() bool {
	hasApproval := p.ApprovalDate != nil && p.ApprovalTime != nil
	noApproval := p.ApprovalDate == nil && p.ApprovalTime == nil
	if p.IsPending() {
		return noApproval
	}
	return hasApproval
}

var ErrInvalidOutcome = errors.NewValidationError("Status must be Disetujui or Ditolak", errors.ErrCodeInvalidStatus)

func combine(d Date, clock string) time.Time {
	offset, err := validation.ParseTimeOfDay(clock)
	if err != nil {
		return d.Time
	}
	return d.Add(offset)
}

func ToDataModel(p *PermitRequest) *permitDatamodel.PermitRequest {
	dm := &permitDatamodel.PermitRequest{
		ID:            p.ID,
		RequesterName: p.RequesterName,
		NIK:           p.NIK,
		DriverName:    p.DriverName,
		PlateNumber:   p.PlateNumber,
		Purpose:       p.Purpose,
		DepartureDate: p.DepartureDate.Time,
		DepartureTime: p.DepartureTime,
		ReturnDate:    p.ReturnDate.Time,
		ReturnTime:    p.ReturnTime,
		Remarks:       p.Remarks,
		Status:        p.Status,
		ApprovalTime:  p.ApprovalTime,
		CreatedAt:     p.CreatedAt,
	}
	if p.ApprovalDate != nil {
		t := p.ApprovalDate.Time
		dm.ApprovalDate = &t
	}
	return dm
}

func FromDataModel(p *permitDatamodel.PermitRequest) *PermitRequest {
	out := &PermitRequest{
		ID:            p.ID,
		RequesterName: p.RequesterName,
		NIK:           p.NIK,
		DriverName:    p.DriverName,
		PlateNumber:   p.PlateNumber,
		Purpose:       p.Purpose,
		DepartureDate: NewDate(p.DepartureDate),
		DepartureTime: p.DepartureTime,
		ReturnDate:    NewDate(p.ReturnDate),
		ReturnTime:    p.ReturnTime,
		Remarks:       p.Remarks,
		Status:        p.Status,
		ApprovalTime:  p.ApprovalTime,
		CreatedAt:     p.CreatedAt,
	}
	if p.ApprovalDate != nil {
		d := NewDate(*p.ApprovalDate)
		out.ApprovalDate = &d
	}
	return out
}

func FromDataModelSlice(permits []*permitDatamodel.PermitRequest) []*PermitRequest {
	result := make([]*PermitRequest, len(permits))
	for i, p := range permits {
		result[i] = FromDataModel(p)
	}
	return result
}
