package domain

import "errors"

var (
	// ErrSourceUnavailable is returned when raw records or reference data
	// cannot be fetched or parsed. The run aborts; there is no retry.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrNoDurationSample is returned when some durations need imputing but
	// not a single duration in the table could be parsed.
	ErrNoDurationSample = errors.New("no parseable duration to impute from")

	// ErrMissingField marks a report lacking a required value (year, time,
	// month, day or summary). Such reports are excluded, never surfaced.
	ErrMissingField = errors.New("missing field")

	// ErrBeforeEarliestYear marks a report dated before [EarliestYear].
	ErrBeforeEarliestYear = errors.New("before earliest credible year")

	// ErrMalformedValue marks a value present but unusable, e.g. a
	// calendar date that does not exist.
	ErrMalformedValue = errors.New("malformed value")
)
