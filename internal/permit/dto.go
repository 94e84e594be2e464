package permit

import (
	"net/url"
	"strings"
	"time"

	errors "github.com/frahmantamala/vehicle-permit/internal"
	"github.com/frahmantamala/vehicle-permit/internal/core/common/validation"
)

// CreatePermitDTO represents the request payload for submitting a permit
type CreatePermitDTO struct {
	RequesterName string  `json:"requester_name"`
	NIK           string  `json:"nik"`
	DriverName    string  `json:"driver_name"`
	PlateNumber   string  `json:"plate_number"`
	Purpose       string  `json:"purpose"`
	DepartureDate string  `json:"departure_date"`
	DepartureTime string  `json:"departure_time"`
	ReturnDate    string  `json:"return_date"`
	ReturnTime    string  `json:"return_time"`
	Remarks       *string `json:"remarks,omitempty"`
}

func (dto CreatePermitDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("requester_name", dto.RequesterName).Required().MaxLength(255)
	v.Field("nik", dto.NIK).Required().MaxLength(32)
	v.Field("driver_name", dto.DriverName).Required().MaxLength(255)
	v.Field("plate_number", dto.PlateNumber).Required().MaxLength(20)
	v.Field("purpose", dto.Purpose).Required()
	v.Field("departure_date", dto.DepartureDate).Required().Date()
	v.Field("departure_time", dto.DepartureTime).Required().TimeOfDay()
	v.Field("return_date", dto.ReturnDate).Required().Date()
	v.Field("return_time", dto.ReturnTime).Required().TimeOfDay()
	return v.Validate()
}

// ToPermit builds a new pending request. The DTO must already be valid.
func (dto CreatePermitDTO) ToPermit() (*PermitRequest, error) {
	departure, err := ParseDate(dto.DepartureDate)
	if err != nil {
		return nil, err
	}
	ret, err := ParseDate(dto.ReturnDate)
	if err != nil {
		return nil, err
	}

	var remarks *string
	if dto.Remarks != nil && strings.TrimSpace(*dto.Remarks) != "" {
		r := strings.TrimSpace(*dto.Remarks)
		remarks = &r
	}

	p := &PermitRequest{
		RequesterName: strings.TrimSpace(dto.RequesterName),
		NIK:           strings.TrimSpace(dto.NIK),
		DriverName:    strings.TrimSpace(dto.DriverName),
		PlateNumber:   strings.TrimSpace(dto.PlateNumber),
		Purpose:       strings.TrimSpace(dto.Purpose),
		DepartureDate: departure,
		DepartureTime: validation.NormalizeTimeOfDay(dto.DepartureTime),
		ReturnDate:    ret,
		ReturnTime:    validation.NormalizeTimeOfDay(dto.ReturnTime),
		Remarks:       remarks,
		Status:        StatusPending,
	}
	return p, p.CheckSchedule()
}

// DecideDTO carries an HR/Admin decision. Approval date and time default to
// the server clock when omitted.
type DecideDTO struct {
	Status       string `json:"status"`
	ApprovalDate string `json:"approval_date,omitempty"`
	ApprovalTime string `json:"approval_time,omitempty"`
}

func (dto DecideDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("status", dto.Status).Required().Custom(func(value interface{}) *errors.AppError {
		s, _ := value.(string)
		if s == "" || Status(s).Terminal() {
			return nil
		}
		return ErrInvalidOutcome
	})
	v.Field("approval_date", dto.ApprovalDate).Date()
	v.Field("approval_time", dto.ApprovalTime).TimeOfDay()
	return v.Validate()
}

// Resolve fills in the approval stamp from now when the caller left it out.
func (dto DecideDTO) Resolve(now time.Time) (Status, Date, string) {
	date := NewDate(now)
	if d, err := ParseDate(dto.ApprovalDate); err == nil {
		date = d
	}
	clock := now.Format(validation.TimeLayout)
	if dto.ApprovalTime != "" {
		clock = validation.NormalizeTimeOfDay(dto.ApprovalTime)
	}
	return Status(dto.Status), date, clock
}

// Filter narrows a listing. Zero values are ignored.
type Filter struct {
	Status Status
	NIK    string
}

func FilterFromQuery(q url.Values) (Filter, *errors.AppError) {
	f := Filter{
		Status: Status(strings.TrimSpace(q.Get("status"))),
		NIK:    strings.TrimSpace(q.Get("nik")),
	}
	v := validation.NewValidator()
	v.Field("status", string(f.Status)).OneOf(string(StatusPending), string(StatusApproved), string(StatusRejected))
	if appErr := v.Validate(); appErr != nil {
		return Filter{}, appErr
	}
	return f, nil
}

// Range presets accepted by filter_type.
const (
	RangeToday     = "today"
	RangeThisWeek  = "this_week"
	RangeThisMonth = "this_month"
	RangeCustom    = "custom"
)

// DateRangeDTO is the query of GET /permits/range and /reports/summary.
type DateRangeDTO struct {
	FilterType string
	Start      string
	End        string
}

func DateRangeFromQuery(q url.Values) DateRangeDTO {
	return DateRangeDTO{
		FilterType: strings.TrimSpace(q.Get("filter_type")),
		Start:      strings.TrimSpace(q.Get("start")),
		End:        strings.TrimSpace(q.Get("end")),
	}
}

// Resolve turns a preset or explicit bounds into an inclusive [start, end] pair.
// Weeks start on Sunday.
func (dto DateRangeDTO) Resolve(now time.Time) (Date, Date, *errors.AppError) {
	today := NewDate(now)

	switch dto.FilterType {
	case RangeToday:
		return today, today, nil
	case RangeThisWeek:
		start := Date{today.AddDate(0, 0, -int(today.Weekday()))}
		return start, Date{start.AddDate(0, 0, 6)}, nil
	case RangeThisMonth:
		start := Date{time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)}
		return start, Date{start.AddDate(0, 1, -1)}, nil
	case "", RangeCustom:
	default:
		return Date{}, Date{}, errors.NewValidationFieldError("filter_type",
			"filter_type must be today, this_week, this_month or custom", errors.ErrCodeInvalidFilterType)
	}

	v := validation.NewValidator()
	v.Field("start", dto.Start).Required().Date()
	v.Field("end", dto.End).Required().Date()
	if appErr := v.Validate(); appErr != nil {
		return Date{}, Date{}, appErr
	}

	start, _ := ParseDate(dto.Start)
	end, _ := ParseDate(dto.End)
	if end.Before(start.Time) {
		return Date{}, Date{}, ErrRangeReversed
	}
	return start, end, nil
}

var ErrRangeReversed = errors.NewValidationError("start must not be after end", errors.ErrCodeInvalidDateRange)
