package services

import (
	"errors"
	"fmt"
)

var (
	ErrTableNotFound          = errors.New("table not found")
	ErrReservationNotFound    = errors.New("reservation not found")
	ErrInvalidGrouping        = errors.New("invalid grouping")
	ErrNotGrouped             = errors.New("table is not in a group")
	ErrTableOccupied          = errors.New("table is occupied and cannot be reserved")
	ErrAlreadyReservedForDate = errors.New("table is already reserved for this date")
	ErrTimeConflict           = errors.New("another reservation exists for this table within 120 minutes")
	ErrStorageFailure         = errors.New("storage failure")
	ErrValidation             = errors.New("validation failed")
)

var domainErrors = []error{
	ErrTableNotFound,
	ErrReservationNotFound,
	ErrInvalidGrouping,
	ErrNotGrouped,
	ErrTableOccupied,
	ErrAlreadyReservedForDate,
	ErrTimeConflict,
	ErrStorageFailure,
	ErrValidation,
}

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func groupingError(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidGrouping, reason)
}

// storageError leaves domain errors untouched and tags everything else as a
// storage failure.
func storageError(err error) error {
	if err == nil {
		return nil
	}
	for _, d := range domainErrors {
		if errors.Is(err, d) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", ErrStorageFailure, err)
}
