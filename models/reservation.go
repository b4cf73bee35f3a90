package models

import "time"

type Reservation struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	TableID   uint   `gorm:"not null;index:idx_reservation_table_date" json:"table_id"`
	Table     *Table `gorm:"foreignKey:TableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Date      string `gorm:"type:varchar(10);not null;index:idx_reservation_table_date;index" json:"date"`
	Time      string `gorm:"type:varchar(5);not null" json:"time"`
	// Area is captured from the table at booking time and is not kept in sync.
	Area      string    `gorm:"type:varchar(50);not null" json:"area"`
	PartySize int       `gorm:"not null" json:"party_size"`
	Requester string    `gorm:"type:varchar(100);not null" json:"requester"`
	Phone     *string   `gorm:"type:varchar(20)" json:"phone,omitempty"`
	Note      *string   `gorm:"type:text" json:"note,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
