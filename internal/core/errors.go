package core

import "errors"

// File-level and operation-level failures. Row-level problems are collected
// as RowError values inside an ImportBatch and never abort a whole file.
var (
	// ErrUnsupportedFormat means the file extension is not one of the
	// accepted spreadsheet formats.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrEmptyFile means the file had no data rows beyond the header.
	ErrEmptyFile = errors.New("no data rows in file")

	// ErrLibraryUnavailable means the parsing capability needed for the
	// file format is not available; the feature is disabled rather than
	// crashing.
	ErrLibraryUnavailable = errors.New("parser for this format is not available")

	// ErrInvalidRange means a custom report period has start after end.
	ErrInvalidRange = errors.New("period start is after end")

	// ErrNoNewData means every transaction in a batch was already present.
	// It is a reportable zero-effect outcome, not a hard failure.
	ErrNoNewData = errors.New("no new transactions to import")
)

// Row rejection reasons, kept as fixed strings so callers can group them.
const (
	ReasonMissingFields = "missing required fields"
	ReasonInvalidDate   = "invalid date"
	ReasonInvalidAmount = "invalid amount"
	ReasonProcessing    = "processing error"
)
