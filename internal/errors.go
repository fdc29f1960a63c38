package internal

import "errors"

// Error definitions for the catalog and subscriber layer
var (
	ErrInvalidCatalog       = errors.New("invalid catalog")
	ErrDeltaCatalog         = errors.New("delta catalog updates are not supported")
	ErrTrackNotFound        = errors.New("track not found")
	ErrNoTrack              = errors.New("init segment has no track")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrUnknownCodec         = errors.New("format has neither codec nor mime type")
	ErrInvalidSize          = errors.New("invalid size")
	ErrInvalidPreferences   = errors.New("invalid preferences")
)
