package raw

import (
	"regexp"
	"strconv"
	"unicode/utf8"
)

// The Set* functions always store the value they are given and report, separately, any
// constraint the value breaks. An empty string is a field that was not supplied.

// SetItem stores value in dst. A length_error is returned if value is longer than maxLen
// characters. maxLen <= 0 means the length is not checked.
func SetItem(dst *string, field, value string, maxLen int) Deviations {
	*dst = value
	if maxLen > 0 && utf8.RuneCountInString(value) > maxLen {
		return Deviations{{
			Kind:     LengthError,
			Field:    field,
			Expected: strconv.Itoa(maxLen),
			Actual:   value,
		}}
	}
	return nil
}

// SetItems stores a copy of values in dst. If the number of values differs from the number of
// bounds a single shape_error is returned and the elements are not checked. Otherwise there is
// one length_error per element that exceeds its bound.
func SetItems(dst *[]string, field string, values []string, maxLens []int) Deviations {
	*dst = append(make([]string, 0, len(values)), values...)
	if len(values) != len(maxLens) {
		return Deviations{{
			Kind:     ShapeError,
			Field:    field,
			Expected: strconv.Itoa(len(maxLens)),
			Actual:   strconv.Itoa(len(values)),
		}}
	}
	var devs Deviations
	for ind, v := range values {
		devs = append(devs, SetItem(new(string), field+"["+strconv.Itoa(ind)+"]", v, maxLens[ind])...)
	}
	return devs
}

// SetMatch stores value in dst and checks that the whole value matches re. An empty value is
// only a deviation (empty_required) when mustHave is set.
func SetMatch(dst *string, field, value string, re *regexp.Regexp, mustHave bool) Deviations {
	*dst = value
	if value == "" {
		if !mustHave {
			return nil
		}
		return Deviations{{Kind: EmptyRequired, Field: field, Expected: re.String(), Actual: value}}
	}
	if !fullMatch(re, value) {
		return Deviations{{Kind: MatchFailed, Field: field, Expected: re.String(), Actual: value}}
	}
	return nil
}

// fullMatch reports whether re matches all of s, not just a substring.
func fullMatch(re *regexp.Regexp, s string) bool {
	loc := re.FindStringIndex(s)
	return loc != nil && loc[0] == 0 && loc[1] == len(s)
}

// anchored compiles pat so that it can only match a whole value.
func anchored(pat string) *regexp.Regexp {
	return regexp.MustCompile(`^(?:` + pat + `)$`)
}

func nonEmpty(vals ...string) bool {
	for _, v := range vals {
		if v != "" {
			return true
		}
	}
	return false
}
