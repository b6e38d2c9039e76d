package scans

import "errors"

var (
	// ErrNotFound indicates no record with the requested id exists.
	ErrNotFound = errors.New("scan record not found")
	// ErrBusy indicates an analysis is already in flight.
	ErrBusy = errors.New("analysis already in progress")
	// ErrNoStagedInput indicates analyze/humanize was requested without input.
	ErrNoStagedInput = errors.New("no staged input")
	// ErrNoResult indicates humanize was requested with no displayed result.
	ErrNoResult = errors.New("no result to humanize")
	// ErrSuperseded indicates a resolution arrived after its input was
	// replaced by a mode switch or reset; the result is dropped.
	ErrSuperseded = errors.New("analysis superseded")
	// ErrHumanizeFailed indicates the humanize follow-up resolved to an
	// error record; the displayed result is left untouched.
	ErrHumanizeFailed = errors.New("humanize failed")
	// ErrConfirmRequired guards the destructive history clear.
	ErrConfirmRequired = errors.New("confirmation required")
	// ErrOversize indicates the upload exceeds the size ceiling for its type.
	ErrOversize = errors.New("file too large")
	// ErrBadExtension indicates the upload extension is not accepted for the mode.
	ErrBadExtension = errors.New("file type not accepted")
	// ErrBadMode indicates an unknown input mode.
	ErrBadMode = errors.New("invalid mode")
	// ErrEmptyText indicates the submitted text is empty after trimming.
	ErrEmptyText = errors.New("text is empty")
)
