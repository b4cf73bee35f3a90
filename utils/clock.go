package utils

import (
	"fmt"
	"time"
)

const (
	DateLayout      = "2006-01-02"
	TimeOfDayLayout = "15:04"
)

// Clock answers "what day and time is it at the restaurant".
type Clock interface {
	Today() string
	Now() time.Time
	NowTimeOfDay() string
}

type RestaurantClock struct {
	loc *time.Location
}

func NewRestaurantClock(tz string) (*RestaurantClock, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("cannot load restaurant timezone %q: %w", tz, err)
	}
	return &RestaurantClock{loc: loc}, nil
}

func (c *RestaurantClock) Location() *time.Location {
	return c.loc
}

func (c *RestaurantClock) Now() time.Time {
	return time.Now().In(c.loc)
}

func (c *RestaurantClock) Today() string {
	return c.Now().Format(DateLayout)
}

func (c *RestaurantClock) NowTimeOfDay() string {
	return c.Now().Format(TimeOfDayLayout)
}

// FixedClock always reports At. Tests move it by assigning At.
type FixedClock struct {
	At time.Time
}

func (c *FixedClock) Now() time.Time {
	return c.At
}

func (c *FixedClock) Today() string {
	return c.At.Format(DateLayout)
}

func (c *FixedClock) NowTimeOfDay() string {
	return c.At.Format(TimeOfDayLayout)
}
