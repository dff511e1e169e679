package racedomain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DefaultRaceTitle is used when a race is created or copied without a name.
const DefaultRaceTitle = "Race"

// FormatSeconds renders a duration in seconds as HH:MM:SS.
func FormatSeconds(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}

var copySuffix = regexp.MustCompile(`^(.*) \((\d+)\)$`)

// GenerateCopyName derives the title of a duplicated race: "Heat" becomes
// "Heat (1)" and "Heat (1)" becomes "Heat (2)".
func GenerateCopyName(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultRaceTitle
	}
	if m := copySuffix.FindStringSubmatch(title); m != nil {
		if n, err := strconv.Atoi(m[2]); err == nil {
			return fmt.Sprintf("%s (%d)", m[1], n+1)
		}
	}
	return title + " (1)"
}
