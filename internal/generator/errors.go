package generator

import "errors"

var (
	errEmptyMaterial = errors.New("no content or file name given")
	errEmptySummary  = errors.New("summary has no content")
	errEmptyMessage  = errors.New("empty chat message")
)
