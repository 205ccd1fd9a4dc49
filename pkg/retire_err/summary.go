package retire_err

import "strings"

const noOutput = "No output provided."

// failureMarkers are lowercase fragments diskutil and firmwarepasswd use when
// something went wrong. diskutil prefixes most failures with "Error: -NNNNN:".
var failureMarkers = []string{
	"error",
	"failed",
	"cannot",
	"could not",
	"couldn't",
	"unable to",
	"not permitted",
	"resource busy",
}

// ExtractSummary condenses utility output for a log field or error message.
// Up to maxCandidates lines that look like failures are joined with " - ";
// without any, the first non-empty line is returned.
func ExtractSummary(output string, maxCandidates int) string {
	if maxCandidates <= 0 {
		maxCandidates = 2
	}

	var first string
	var hits []string
	for _, raw := range strings.Split(output, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if first == "" {
			first = line
		}
		if len(hits) < maxCandidates && looksLikeFailure(line) {
			hits = append(hits, line)
		}
	}

	switch {
	case len(hits) > 0:
		return strings.Join(hits, " - ")
	case first != "":
		return first
	default:
		return noOutput
	}
}

func looksLikeFailure(line string) bool {
	lower := strings.ToLower(line)
	for _, m := range failureMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}
