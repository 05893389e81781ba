package grid

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	// "400m" -> "0.4k"
	meterPattern = regexp.MustCompile(`(?i)(\d+)\s*m\b`)

	// "13 Ez" -> "13k"; "8 R'" (minutes) is left alone.
	runTypePattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:ez|mp|thr|i|r)\b`)

	// "3 x 2k", "4×(1.5k", "6*1k"
	repeatPattern = regexp.MustCompile(`(?i)([0-9]+)\s*[x×*]\s*\(?(\d+(?:\.\d+)?)\s*k`)

	// "10k", "2.5 k"
	distancePattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*k`)
)

// normalizers run in order before extraction. Each one rewrites a unit
// spelling into the "<number>k" form the extraction patterns understand.
var normalizers = []func(string) string{
	normalizeMeters,
	normalizeRunTypes,
}

// ExtractDistance returns the distance in kilometres described by a workout
// description, rounded to one decimal. Empty or unrecognised text yields 0.
//
// The text is split on "+" and each segment is measured on its own: repeats
// ("3 x 2k") are multiplied out, otherwise every plain distance is summed.
func ExtractDistance(description string) float64 {
	if description == "" {
		return 0
	}
	text := description
	for _, normalize := range normalizers {
		text = normalize(text)
	}

	var total float64
	for _, segment := range strings.Split(text, "+") {
		total += segmentDistance(segment)
	}
	return roundTenth(total)
}

func segmentDistance(segment string) float64 {
	var total float64

	repeats := repeatPattern.FindAllStringSubmatch(segment, -1)
	for _, m := range repeats {
		total += parseFloat(m[1]) * parseFloat(m[2])
	}
	if len(repeats) > 0 {
		return total
	}

	for _, m := range distancePattern.FindAllStringSubmatch(segment, -1) {
		total += parseFloat(m[1])
	}
	return total
}

func normalizeMeters(s string) string {
	return rewrite(s, meterPattern, func(s string, loc []int) (string, bool) {
		meters := parseFloat(s[loc[2]:loc[3]])
		return formatNumber(meters/1000) + "k", true
	})
}

func normalizeRunTypes(s string) string {
	return rewrite(s, runTypePattern, func(s string, loc []int) (string, bool) {
		if followedByMinuteMarker(s[loc[1]:]) {
			return "", false
		}
		return s[loc[2]:loc[3]] + "k", true
	})
}

// rewrite replaces every match of re in s with the string returned by repl.
// When repl reports false the match is kept as is.
func rewrite(s string, re *regexp.Regexp, repl func(s string, loc []int) (string, bool)) string {
	matches := re.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s
	}

	var b strings.Builder
	last := 0
	for _, loc := range matches {
		replacement, ok := repl(s, loc)
		if !ok {
			continue
		}
		b.WriteString(s[last:loc[0]])
		b.WriteString(replacement)
		last = loc[1]
	}
	b.WriteString(s[last:])
	return b.String()
}

func followedByMinuteMarker(rest string) bool {
	return strings.HasPrefix(rest, "'") || strings.HasPrefix(rest, "’")
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// formatNumber renders v in its shortest decimal form ("0.4", "12", "-1.5").
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// roundTenth rounds to one decimal, halves towards positive infinity.
func roundTenth(v float64) float64 {
	return math.Floor(v*10+0.5) / 10
}
