package matchmaking

import "strings"

// MaxInterests caps the interests kept per request.
const MaxInterests = 10

// normalizeInterests trims, lower-cases and de-duplicates interests, keeping
// the first MaxInterests in their original order.
func normalizeInterests(raw []string) []string {
	if len(raw) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, interest := range raw {
		interest = strings.ToLower(strings.TrimSpace(interest))
		if interest == "" {
			continue
		}
		if _, dup := seen[interest]; dup {
			continue
		}
		seen[interest] = struct{}{}
		out = append(out, interest)
		if len(out) == MaxInterests {
			break
		}
	}
	return out
}
