package permit

import "time"

type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Disetujui"
	StatusRejected Status = "Ditolak"
)

// Terminal reports whether no transition may leave s.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

type PermitRequest struct {
	ID            int64      `gorm:"primaryKey"`
	RequesterName string     `gorm:"column:requester_name;not null"`
	NIK           string     `gorm:"column:nik;index;not null"`
	DriverName    string     `gorm:"column:driver_name;not null"`
	PlateNumber   string     `gorm:"column:plate_number;not null"`
	Purpose       string     `gorm:"column:purpose;not null"`
	DepartureDate time.Time  `gorm:"column:departure_date;type:date;index;not null"`
	DepartureTime string     `gorm:"column:departure_time;size:5;not null"`
	ReturnDate    time.Time  `gorm:"column:return_date;type:date;not null"`
	ReturnTime    string     `gorm:"column:return_time;size:5;not null"`
	Remarks       *string    `gorm:"column:remarks"`
	Status        Status     `gorm:"column:status;index;not null;default:Pending"`
	ApprovalDate  *time.Time `gorm:"column:approval_date;type:date"`
	ApprovalTime  *string    `gorm:"column:approval_time;size:5"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (PermitRequest) TableName() string {
	return "permit_requests"
}
