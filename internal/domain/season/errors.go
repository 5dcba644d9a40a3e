package season

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidDefinition = errors.New("invalid season definition")
	ErrUnknownSeason     = errors.New("unknown season")
	ErrDuplicateSeason   = errors.New("season already registered")
	ErrNoSeasons         = errors.New("no seasons registered")
	ErrLoadSeason        = errors.New("load season failed")
)
