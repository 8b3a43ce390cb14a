package raw

import (
	"fmt"

	"github.com/goccy/go-json"
)

// historyCodes is the packed voting history: zero or more 4-character election codes
var historyCodes = anchored(`(?:\w{4})*`)

// Election is one election a voter took part in: the 2-letter type (GE, PE, ...) and the
// 2-digit year.
type Election struct {
	Year string `json:"year"`
	Type string `json:"type"`
}

// History is the decoded voting history. If the source did not decode, Codes is nil and Raw
// holds the source text.
type History struct {
	Codes []Election
	Raw   string
}

// Valid reports whether the history decoded (an empty history is valid).
func (h History) Valid() bool {
	return h.Codes != nil
}

// MarshalJSON writes the decoded elections, or the raw text if decoding failed.
func (h History) MarshalJSON() ([]byte, error) {
	if h.Codes == nil && h.Raw != "" {
		return json.Marshal(h.Raw)
	}
	if h.Codes == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(h.Codes)
}

func (h *History) UnmarshalJSON(b []byte) error {
	var s string
	if e := json.Unmarshal(b, &s); e == nil {
		*h = History{Raw: s}
		return nil
	}
	codes := make([]Election, 0)
	if e := json.Unmarshal(b, &codes); e != nil {
		return e
	}
	*h = History{Codes: codes}
	return nil
}

// DecodeHistory splits a packed history such as "GE09PE04" into elections, keeping the input
// order (most recent first in the export).
func DecodeHistory(codes string) ([]Election, error) {
	if !historyCodes.MatchString(codes) {
		return nil, fmt.Errorf("history %q is not a sequence of 4-character codes", codes)
	}
	elecs := make([]Election, 0, len(codes)/4)
	for start := 0; start+4 <= len(codes); start += 4 {
		grp := codes[start : start+4]
		elecs = append(elecs, Election{Type: grp[:2], Year: grp[2:]})
	}
	return elecs, nil
}

// SetHistoryCodes decodes codes into dst. A history that does not decode is kept as-is and
// reported as a history_code_error.
func SetHistoryCodes(dst *History, field, codes string) Deviations {
	elecs, err := DecodeHistory(codes)
	if err != nil {
		*dst = History{Raw: codes}
		return Deviations{{Kind: HistoryCodeError, Field: field, Expected: historyCodes.String(), Actual: codes}}
	}
	*dst = History{Codes: elecs}
	return nil
}
