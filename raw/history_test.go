package raw

import (
	"fmt"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetHistoryCodes(t *testing.T) {
	var h History
	assert.Empty(t, SetHistoryCodes(&h, "history_codes", "GE09PE04"))
	assert.Equal(t, []Election{{Type: "GE", Year: "09"}, {Type: "PE", Year: "04"}}, h.Codes)

	assert.Empty(t, SetHistoryCodes(&h, "history_codes", ""))
	assert.True(t, h.Valid())
	assert.Empty(t, h.Codes)

	devs := SetHistoryCodes(&h, "history_codes", "GE09PE0")
	require.Len(t, devs, 1)
	assert.Equal(t, HistoryCodeError, devs[0].Kind)
	assert.False(t, h.Valid())
	assert.Equal(t, "GE09PE0", h.Raw)

	assert.Len(t, SetHistoryCodes(&h, "history_codes", "GE09 E04"), 1)
}

func TestHistoryJSON(t *testing.T) {
	b, err := json.Marshal(History{Codes: []Election{{Type: "GE", Year: "16"}}})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"year":"16","type":"GE"}]`, string(b))

	b, err = json.Marshal(History{})
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(b))

	b, err = json.Marshal(History{Raw: "GE1"})
	require.NoError(t, err)
	assert.Equal(t, `"GE1"`, string(b))
}

func ExampleDecodeHistory() {
	elecs, _ := DecodeHistory("GE16PE16GE12")
	for _, e := range elecs {
		fmt.Println(e.Type, e.Year)
	}
	// Output:
	// GE 16
	// PE 16
	// GE 12
}
