package common

import "fmt"

var (
	ErrInvalidTripMap = fmt.Errorf("invalid trip map")
	ErrAuthRejected   = fmt.Errorf("authentication rejected")
	ErrDuplicateAsset = fmt.Errorf("asset already exists")
	ErrNoImagesFound  = fmt.Errorf("no image files found")
	ErrNoContent      = fmt.Errorf("no working download source")
)
