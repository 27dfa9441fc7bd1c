package forecaster

import (
	"errors"
	"fmt"
)

var (
	// ErrDataFetch matches any failure to obtain forecast data.
	ErrDataFetch = errors.New("data fetch failed")

	// ErrDataValidation matches any failure caused by too few valid forecasts.
	ErrDataValidation = errors.New("data validation failed")
)

// DataFetchError reports that no source produced data, or that the fetch strategy itself failed.
type DataFetchError struct {
	Reason string
	Err    error
}

func (e *DataFetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *DataFetchError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrDataFetch) match.
func (e *DataFetchError) Is(target error) bool {
	return target == ErrDataFetch
}

// DataValidationError reports that fewer forecasts than required survived validation.
type DataValidationError struct {
	Got  int
	Need int
}

func (e *DataValidationError) Error() string {
	return fmt.Sprintf("insufficient valid data: got %d, need %d", e.Got, e.Need)
}

// Is lets errors.Is(err, ErrDataValidation) match.
func (e *DataValidationError) Is(target error) bool {
	return target == ErrDataValidation
}
