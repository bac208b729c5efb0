package segment

import (
	"fmt"
	"strconv"
	"strings"
)

const unknownMarker = "$unknown#"

// KnownKey is "<campaign code>#<n>", n counting up from 1 per campaign.
func KnownKey(campaignCode string, n int) string {
	return fmt.Sprintf("%s#%d", campaignCode, n)
}

// UnknownKey is "<campaign code>$unknown#<n>", n counting down from -1 per campaign.
func UnknownKey(campaignCode string, n int) string {
	return fmt.Sprintf("%s%s%d", campaignCode, unknownMarker, n)
}

func IsUnknownKey(key string) bool {
	return strings.Contains(key, unknownMarker)
}

func keySuffix(key string) (int, bool) {
	i := strings.LastIndex(key, "#")
	if i < 0 {
		return 0, false
	}
	n, err := strconv.Atoi(key[i+1:])
	if err != nil {
		return 0, false
	}
	return n, true
}

func nextKnownSuffix(keys []string) int {
	max := 0
	for _, k := range keys {
		if n, ok := keySuffix(k); ok && n > max {
			max = n
		}
	}
	return max + 1
}

func nextUnknownSuffix(keys []string) int {
	min := 0
	for _, k := range keys {
		if n, ok := keySuffix(k); ok && n < min {
			min = n
		}
	}
	return min - 1
}
