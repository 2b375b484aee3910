package interpreter

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidVersion is returned when pip's version banner cannot be read
var ErrInvalidVersion = errors.New("invalid version string")

// Pre-release phase priorities (lower = earlier in release cycle)
var suffixPriority = map[string]int{
	"dev": -4,
	"a":   -3,
	"b":   -2,
	"rc":  -1,
	"":    0, // final release
}

// suffixAliases maps alternate PEP 440 spellings to their normal form
var suffixAliases = map[string]string{
	"alpha":   "a",
	"beta":    "b",
	"c":       "rc",
	"pre":     "rc",
	"preview": "rc",
}

// versionRegex matches release segments plus an optional pre/dev suffix and post release:
// 23.1, 24.0b1, 23.3.dev0, 1.0.post2, v21.0rc1
var versionRegex = regexp.MustCompile(`^v?(\d+(?:\.\d+)*)(?:[-_.]?(dev|alpha|beta|preview|pre|rc|a|b|c)[-_.]?(\d*))?(?:[-_.]?(post|rev|r)[-_.]?(\d*))?`)

// parseVersion breaks a version string into components for comparison
// Returns: release parts, suffix type, suffix num, post release num (-1 if none)
func parseVersion(v string) ([]int, string, int, int) {
	matches := versionRegex.FindStringSubmatch(strings.ToLower(strings.TrimSpace(v)))
	if matches == nil {
		return nil, "", 0, -1
	}

	parts := strings.Split(matches[1], ".")
	nums := make([]int, len(parts))
	for i, p := range parts {
		nums[i], _ = strconv.Atoi(p)
	}

	suffixType := matches[2]
	if alias, ok := suffixAliases[suffixType]; ok {
		suffixType = alias
	}
	suffixNum := 0
	if matches[3] != "" {
		suffixNum, _ = strconv.Atoi(matches[3])
	}

	post := -1
	if matches[4] != "" {
		post = 0
		if matches[5] != "" {
			post, _ = strconv.Atoi(matches[5])
		}
	}

	return nums, suffixType, suffixNum, post
}

// compareIntSlices compares two slices of integers, padding the shorter with zeros
func compareIntSlices(a, b []int) int {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}

	for i := 0; i < maxLen; i++ {
		var av, bv int
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}

		if av < bv {
			return -1
		}
		if av > bv {
			return 1
		}
	}
	return 0
}

// CompareVersions compares two PEP 440 style version strings
// Returns: -1 if v1 < v2, 0 if v1 == v2, 1 if v1 > v2
func CompareVersions(v1, v2 string) int {
	nums1, suffix1, suffixNum1, post1 := parseVersion(v1)
	nums2, suffix2, suffixNum2, post2 := parseVersion(v2)

	if cmp := compareIntSlices(nums1, nums2); cmp != 0 {
		return cmp
	}

	// dev < a < b < rc < final
	priority1 := suffixPriority[suffix1]
	priority2 := suffixPriority[suffix2]
	if priority1 < priority2 {
		return -1
	}
	if priority1 > priority2 {
		return 1
	}

	if suffixNum1 < suffixNum2 {
		return -1
	}
	if suffixNum1 > suffixNum2 {
		return 1
	}

	if post1 < post2 {
		return -1
	}
	if post1 > post2 {
		return 1
	}

	return 0
}

// AtLeast reports whether version is minimum or newer
func AtLeast(version, minimum string) bool {
	return CompareVersions(version, minimum) >= 0
}

// NewerRelease reports whether version's major.minor release is later than
// base's. Patch releases and pre-release suffixes are ignored.
func NewerRelease(version, base string) bool {
	v, _, _, _ := parseVersion(version)
	b, _, _, _ := parseVersion(base)
	if len(v) > 2 {
		v = v[:2]
	}
	if len(b) > 2 {
		b = b[:2]
	}
	return compareIntSlices(v, b) > 0
}

// ParsePipVersion extracts the version from "pip --version" output,
// e.g. "pip 23.0.1 from /usr/lib/python3/site-packages/pip (python 3.11)".
func ParsePipVersion(output string) (string, error) {
	fields := strings.Fields(output)
	if len(fields) < 2 || fields[0] != "pip" {
		return "", errors.Join(ErrInvalidVersion, errors.New(strings.TrimSpace(output)))
	}
	if !versionRegex.MatchString(fields[1]) {
		return "", errors.Join(ErrInvalidVersion, errors.New(fields[1]))
	}
	return fields[1], nil
}
