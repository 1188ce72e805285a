package util

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"
)

var (
	nonSlugRunes = regexp.MustCompile(`[^a-z0-9]+`)
	timestampRe  = regexp.MustCompile(`^(\d{4})(\d{2})(\d{2})_(\d{2})(\d{2})(\d{2})`)
	dateDetailRe = regexp.MustCompile(`\d{1,2}\s[A-Za-z]{3}\s\d{4}`)
)

// Slugify normalizes a name into a lowercase [a-z0-9-]+ token. An input with
// no usable runes yields "photo" so derived identifiers are never empty.
func Slugify(value string) string {
	text := strings.ToLower(strings.TrimSpace(value))
	text = nonSlugRunes.ReplaceAllString(text, "-")
	text = strings.Trim(text, "-")
	if text == "" {
		return "photo"
	}

	return text
}

// TextOrDefault returns the trimmed value, or fallback when it is blank.
func TextOrDefault(value, fallback string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}

	return trimmed
}

// UniqueStrings drops empty values and duplicates, keeping first-seen order.
func UniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	output := make([]string, 0, len(values))
	for _, value := range values {
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		output = append(output, value)
	}

	return output
}

// TitleFromName derives a photo title from its file name. Camera-style
// YYYYMMDD_HHMMSS stems become a readable timestamp, anything else is the
// cleaned stem, and an unusable stem yields the fallback.
func TitleFromName(fileName, fallback string) string {
	stem := strings.TrimSpace(strings.TrimSuffix(path.Base(fileName), path.Ext(fileName)))

	if m := timestampRe.FindStringSubmatch(stem); m != nil {
		stamp := fmt.Sprintf("%s-%s-%sT%s:%s:%s", m[1], m[2], m[3], m[4], m[5], m[6])
		if t, err := time.Parse("2006-01-02T15:04:05", stamp); err == nil {
			return t.Format("02 Jan 2006, 03:04 PM")
		}
	}

	pretty := strings.NewReplacer("-", " ", "_", " ").Replace(stem)
	pretty = strings.TrimSpace(pretty)
	if pretty == "" {
		return fallback
	}

	return pretty
}

// DescriptionFor synthesizes a default description from a title and a trip
// label. A title that already leads with the label is not repeated, and
// date-shaped titles read as "Captured on ...".
func DescriptionFor(title, tripLabel string) string {
	title = strings.TrimSpace(title)
	tripLabel = strings.TrimSpace(tripLabel)

	if title == "" {
		if tripLabel == "" {
			tripLabel = "this trip"
		}

		return fmt.Sprintf("Captured during %s.", tripLabel)
	}

	detail := title
	if tripLabel != "" {
		prefix := tripLabel + " - "
		if strings.HasPrefix(strings.ToLower(title), strings.ToLower(prefix)) {
			detail = strings.TrimSpace(title[len(prefix):])
		}
	}

	if dateDetailRe.MatchString(detail) {
		return fmt.Sprintf("Captured on %s.", detail)
	}

	return detail + "."
}
