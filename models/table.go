package models

import "time"

const (
	TableAvailable = "available"
	TableOccupied  = "occupied"
	TableReserved  = "reserved"
)

// Table is the mutable state of a physical table. Capacity, area and position
// come from the static floor plan and are joined in TableView.
type Table struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Number     int       `gorm:"not null;uniqueIndex" json:"number"`
	Status     string    `gorm:"type:varchar(20);not null;default:'available'" json:"status"`
	OccupiedOn *string   `gorm:"type:varchar(10)" json:"occupied_on"`
	GroupID    *uint     `gorm:"index" json:"group_id"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func IsValidTableStatus(s string) bool {
	switch s {
	case TableAvailable, TableOccupied, TableReserved:
		return true
	}
	return false
}

// Free puts the table back to available and clears its date.
func (t *Table) Free() {
	t.Status = TableAvailable
	t.OccupiedOn = nil
}

// Mark sets a non-available status together with its date.
func (t *Table) Mark(status, date string) {
	t.Status = status
	d := date
	t.OccupiedOn = &d
}

// OccupiedDate returns the occupancy date or "" when there is none.
func (t *Table) OccupiedDate() string {
	if t.OccupiedOn == nil {
		return ""
	}
	return *t.OccupiedOn
}

// TableView is what callers see: floor plan configuration merged with state.
type TableView struct {
	ID            uint    `json:"id"`
	Number        int     `json:"number"`
	Capacity      int     `json:"capacity"`
	Area          string  `json:"area"`
	PosX          int     `json:"pos_x"`
	PosY          int     `json:"pos_y"`
	Status        string  `json:"status"`
	OccupiedOn    *string `json:"occupied_on"`
	GroupID       *uint   `json:"group_id"`
	GroupCapacity int     `json:"group_capacity"`
}
