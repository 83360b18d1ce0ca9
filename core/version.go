package core

import (
	"strconv"
	"strings"
)

// CompareVersionStrings orders dot-separated version strings by numeric
// segment. Missing trailing segments count as zero, so "1.2" equals
// "1.2.0". Non-numeric segments count as zero as well; vendor version
// strings are expected to be purely numeric.
func CompareVersionStrings(a, b string) int {
	segmentsA := strings.Split(strings.TrimSpace(a), ".")
	segmentsB := strings.Split(strings.TrimSpace(b), ".")
	length := len(segmentsA)
	if len(segmentsB) > length {
		length = len(segmentsB)
	}
	for i := 0; i < length; i++ {
		diff := segmentAt(segmentsA, i) - segmentAt(segmentsB, i)
		if diff != 0 {
			return diff
		}
	}
	return 0
}

func segmentAt(segments []string, index int) int {
	if index >= len(segments) {
		return 0
	}
	value, err := strconv.Atoi(strings.TrimSpace(segments[index]))
	if err != nil || value < 0 {
		return 0
	}
	return value
}

// LatestVersion selects the maximum version by string ordering, not by
// server-returned order or release date. Returns false when the list is
// empty.
func LatestVersion(versions []VersionRecord) (VersionRecord, bool) {
	if len(versions) == 0 {
		return VersionRecord{}, false
	}
	latest := versions[0]
	for _, candidate := range versions[1:] {
		if CompareVersionStrings(candidate.VersionString, latest.VersionString) > 0 {
			latest = candidate
		}
	}
	return latest, true
}
