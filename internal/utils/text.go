// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	// mentionRE matches identifier-style mention tokens such as "@15551234".
	mentionRE = regexp.MustCompile(`@\d+`)

	// urlRE matches hyperlinks.
	urlRE = regexp.MustCompile(`(?i)https?://[^\s]+`)

	// spamREs is the fixed disjunction of spam signatures: pharma/gambling
	// keywords, call-to-action phrases, currency-symbol spam, and three or
	// more links in a single message.
	spamREs = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(viagra|cialis|casino|lottery|winner)\b`),
		regexp.MustCompile(`(?i)\b(click here|buy now|limited offer)\b`),
		regexp.MustCompile(`\$\$\$|💰💰💰`),
		regexp.MustCompile(`(?i)(https?://[^\s]+[\s\S]*?){3,}`),
	}

	nonDigitRE = regexp.MustCompile(`\D`)
)

// CountMentions returns the number of mention tokens in a message.
func CountMentions(message string) int {
	return len(mentionRE.FindAllString(message, -1))
}

// ContainsLinks reports whether the message carries at least one hyperlink.
func ContainsLinks(message string) bool {
	return urlRE.MatchString(message)
}

// IsSpam reports whether the message matches any of the fixed spam signatures.
func IsSpam(message string) bool {
	for _, re := range spamREs {
		if re.MatchString(message) {
			return true
		}
	}
	return false
}

// FormatPhoneNumber strips non-digits and prefixes a default country code to
// bare 10-digit national numbers.
func FormatPhoneNumber(phone string) string {
	cleaned := nonDigitRE.ReplaceAllString(phone, "")
	if len(cleaned) == 10 && !strings.HasPrefix(cleaned, "1") {
		cleaned = "1" + cleaned
	}
	return cleaned
}

// ChunkStrings splits items into consecutive batches of at most size
// elements. A size <= 0 yields a single batch containing all items.
func ChunkStrings(items []string, size int) [][]string {
	if size <= 0 {
		if len(items) == 0 {
			return nil
		}
		return [][]string{items}
	}
	var chunks [][]string
	for i := 0; i < len(items); i += size {
		end := i + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[i:end])
	}
	return chunks
}

// SanitizeInput trims whitespace and drops angle brackets from free-form
// caller input before it is echoed back or stored.
func SanitizeInput(input string) string {
	return strings.NewReplacer("<", "", ">", "").Replace(strings.TrimSpace(input))
}

// FormatDuration renders a duration in the coarsest useful unit, e.g.
// "2d 3h", "3h 20m", "5m 12s", "42s".
func FormatDuration(d time.Duration) string {
	seconds := int64(d.Seconds())
	minutes := seconds / 60
	hours := minutes / 60
	days := hours / 24

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours%24)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes%60)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds%60)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
