package models

import "time"

const (
	ReleaseManual  = "manual_release"
	ReleaseExpired = "expired_sweep"
)

// ReservationSnapshot is a frozen copy of a reservation at archival time. It may
// diverge from the live tables (renumbering, area moves) and must never be
// refreshed from them.
type ReservationSnapshot struct {
	TableID           uint      `gorm:"not null" json:"table_id"`
	TableNumber       int       `gorm:"not null" json:"table_number"`
	Date              string    `gorm:"type:varchar(10);not null;index" json:"date"`
	Time              string    `gorm:"type:varchar(5);not null" json:"time"`
	Area              string    `gorm:"type:varchar(50);not null" json:"area"`
	PartySize         int       `gorm:"not null" json:"party_size"`
	Requester         string    `gorm:"type:varchar(100);not null" json:"requester"`
	Phone             *string   `gorm:"type:varchar(20)" json:"phone,omitempty"`
	Note              *string   `gorm:"type:text" json:"note,omitempty"`
	OriginalCreatedAt time.Time `gorm:"not null" json:"original_created_at"`
}

// ReservationHistory is an append-only archive row for a released reservation.
type ReservationHistory struct {
	ID                    uint                `gorm:"primaryKey" json:"id"`
	OriginalReservationID uint                `gorm:"not null;index" json:"original_reservation_id"`
	Snapshot              ReservationSnapshot `gorm:"embedded" json:"snapshot"`
	ReleasedAt            time.Time           `gorm:"not null" json:"released_at"`
	ReleaseTime           *string             `gorm:"type:varchar(5)" json:"release_time"`
	Reason                string              `gorm:"type:varchar(30);not null" json:"reason"`
}

func (ReservationHistory) TableName() string {
	return "reservation_histories"
}

// SnapshotOf freezes r. The table number is passed separately because the
// reservation only references the table by id.
func SnapshotOf(r Reservation, tableNumber int) ReservationSnapshot {
	return ReservationSnapshot{
		TableID:           r.TableID,
		TableNumber:       tableNumber,
		Date:              r.Date,
		Time:              r.Time,
		Area:              r.Area,
		PartySize:         r.PartySize,
		Requester:         r.Requester,
		Phone:             r.Phone,
		Note:              r.Note,
		OriginalCreatedAt: r.CreatedAt,
	}
}
