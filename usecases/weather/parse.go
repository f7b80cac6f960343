package weather

import (
	"strings"

	"github.com/samber/mo"

	"weatherbot/models"
)

// ParseLocation turns "city:Los Angeles" or "zip:90210" into a location query.
// Any type other than "city" is treated as a zip code.
func ParseLocation(text string) mo.Option[models.LocationQuery] {
	locationType, value, found := strings.Cut(strings.TrimSpace(text), ":")
	if !found {
		return mo.None[models.LocationQuery]()
	}

	locationType = strings.TrimSpace(locationType)
	value = strings.TrimSpace(value)
	if locationType == "" || value == "" {
		return mo.None[models.LocationQuery]()
	}

	kind := models.LocationKindZip
	if locationType == "city" {
		kind = models.LocationKindCity
	}

	return mo.Some(models.LocationQuery{Kind: kind, Value: value})
}

// ParseMentionText parses the location following the "<@BOT> " mention.
// Text without a space after the mention is not parsed.
func ParseMentionText(text string) mo.Option[models.LocationQuery] {
	_, rest, found := strings.Cut(text, "> ")
	if !found {
		return mo.None[models.LocationQuery]()
	}
	return ParseLocation(rest)
}
