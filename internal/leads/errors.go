package leads

import "errors"

var (
	// ErrMissingMicrosite is returned when a lead has no microsite.
	ErrMissingMicrosite = errors.New("Missing required fields")

	// ErrInvalidBHK is returned when neither bhk nor bhkType yields a preference.
	ErrInvalidBHK = errors.New("Invalid or missing BHK preference")

	// ErrLeadNotFound is returned when a lead is not found
	ErrLeadNotFound = errors.New("lead not found")
)
