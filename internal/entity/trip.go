package entity

const (
	TripModeSingle   = "single"
	TripModeChildren = "children"

	TargetModeShare     = "share"
	TargetModeDriveItem = "drive_item"
)

// TripConfig is one normalized entry of the trip map: either a plain share
// link or a folder whose subfolders each become their own trip.
type TripConfig struct {
	Key      string // Normalized trip key ([a-z0-9-]+)
	Mode     string // TripModeSingle or TripModeChildren
	ShareURL string
	Label    string // Human-readable trip label, used for descriptions
	Prefix   string // Optional key prefix for expanded children
}

// CrawlTarget is one concrete unit of crawl work produced by the planner.
// Targets are immutable once planned; trip keys are unique across a run.
type CrawlTarget struct {
	Trip     string
	Label    string
	Mode     string // TargetModeShare or TargetModeDriveItem
	ShareURL string
	DriveID  string
	ItemID   string
}
