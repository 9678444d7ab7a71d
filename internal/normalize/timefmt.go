package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/growth-archive/internal/models"
)

// Locale selects the language of relative-time labels.
type Locale string

const (
	LocaleZH Locale = "zh"
	LocaleEN Locale = "en"
)

// ParseLocale maps a config value to a Locale, defaulting to Chinese.
func ParseLocale(raw string) Locale {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "en", "en-us", "en_us", "english":
		return LocaleEN
	default:
		return LocaleZH
	}
}

const day = 24 * time.Hour

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// ParseTimestamp reads a backend timestamp. Values without a zone are taken as UTC.
func ParseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// RelativeTime renders the age of an event the way the inbox shows it.
// Events in the future (clock skew) render as "just now".
func RelativeTime(elapsed time.Duration, locale Locale) string {
	if elapsed < time.Minute {
		return phrase(locale, "just_now", 0)
	}
	if minutes := int(elapsed / time.Minute); minutes < 60 {
		return phrase(locale, "minutes", minutes)
	}
	if hours := int(elapsed / time.Hour); hours < 24 {
		return phrase(locale, "hours", hours)
	}
	days := int(elapsed / day)
	if days == 1 {
		return phrase(locale, "yesterday", 1)
	}
	return phrase(locale, "days", days)
}

// TimeGroup buckets an event by whole days elapsed: 0 today, 1 yesterday, otherwise older.
// Future timestamps count as today.
func TimeGroup(elapsed time.Duration) models.NotificationGroup {
	if elapsed < 0 {
		return models.GroupToday
	}
	switch int(elapsed / day) {
	case 0:
		return models.GroupToday
	case 1:
		return models.GroupYesterday
	default:
		return models.GroupOlder
	}
}

func phrase(locale Locale, key string, n int) string {
	if locale == LocaleEN {
		switch key {
		case "just_now":
			return "just now"
		case "yesterday":
			return "yesterday"
		case "minutes":
			return plural(n, "minute")
		case "hours":
			return plural(n, "hour")
		default:
			return plural(n, "day")
		}
	}
	switch key {
	case "just_now":
		return "刚刚"
	case "yesterday":
		return "昨天"
	case "minutes":
		return fmt.Sprintf("%d分钟前", n)
	case "hours":
		return fmt.Sprintf("%d小时前", n)
	default:
		return fmt.Sprintf("%d天前", n)
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
