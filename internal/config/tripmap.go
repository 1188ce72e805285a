package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jgivc/gallerysync/internal/common"
	"github.com/jgivc/gallerysync/internal/entity"
	"github.com/jgivc/gallerysync/internal/util"
)

type tripObject struct {
	ShareURL        string `json:"share_url"`
	URL             string `json:"url"`
	TripLabel       string `json:"trip_label"`
	TripPrefix      string `json:"trip_prefix"`
	ChildrenAsTrips any    `json:"children_as_trips"`
}

// ParseTripMap normalizes the trip-map JSON: each key maps to either a share
// URL string or an object config. Keys are slugified; objects with
// children_as_trips become children-mode entries expanded later by the
// planner.
func ParseTripMap(raw string) (map[string]entity.TripConfig, error) {
	var parsed map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidTripMap, err)
	}

	normalized := make(map[string]entity.TripConfig, len(parsed))
	for tripKey, rawValue := range parsed {
		trip := util.Slugify(tripKey)

		var link string
		if err := json.Unmarshal(rawValue, &link); err == nil {
			if strings.TrimSpace(link) == "" {
				return nil, fmt.Errorf("%w: trip %q has empty share URL", common.ErrInvalidTripMap, tripKey)
			}
			normalized[trip] = entity.TripConfig{
				Key:      trip,
				Mode:     entity.TripModeSingle,
				ShareURL: strings.TrimSpace(link),
				Label:    util.TextOrDefault(tripKey, trip),
			}

			continue
		}

		var obj tripObject
		if err := json.Unmarshal(rawValue, &obj); err != nil {
			return nil, fmt.Errorf("%w: trip %q must be a share URL string or an object config", common.ErrInvalidTripMap, tripKey)
		}

		shareURL := util.TextOrDefault(obj.ShareURL, util.TextOrDefault(obj.URL, ""))
		if shareURL == "" {
			return nil, fmt.Errorf("%w: trip %q object config is missing share_url", common.ErrInvalidTripMap, tripKey)
		}

		if truthy(obj.ChildrenAsTrips) {
			normalized[trip] = entity.TripConfig{
				Key:      trip,
				Mode:     entity.TripModeChildren,
				ShareURL: shareURL,
				Prefix:   util.TextOrDefault(obj.TripPrefix, ""),
			}

			continue
		}

		normalized[trip] = entity.TripConfig{
			Key:      trip,
			Mode:     entity.TripModeSingle,
			ShareURL: shareURL,
			Label:    util.TextOrDefault(obj.TripLabel, util.TextOrDefault(tripKey, trip)),
		}
	}

	if len(normalized) == 0 {
		return nil, fmt.Errorf("%w: trip map is empty", common.ErrInvalidTripMap)
	}

	return normalized, nil
}

func truthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "on":
			return true
		}
	case float64:
		// JSON numbers coerce through their text form, so only a literal 1
		// reads as true.
		return v == 1
	}

	return false
}
