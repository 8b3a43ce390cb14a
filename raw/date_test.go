package raw

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetYYYYMMDD(t *testing.T) {
	var dst DateField
	assert.Empty(t, SetYYYYMMDD(&dst, "dob", "20170710"))
	require.True(t, dst.Valid())
	assert.Equal(t, Date{Year: 2017, Month: 7, Day: 10}, *dst.Date)

	devs := SetYYYYMMDD(&dst, "dob", "2017071")
	require.Len(t, devs, 1)
	assert.Equal(t, DateFormatError, devs[0].Kind)
	assert.False(t, dst.Valid())
	assert.Equal(t, "2017071", dst.Raw)

	assert.Empty(t, SetYYYYMMDD(&dst, "dob", ""))
	assert.Equal(t, DateField{}, dst)

	// structural only
	assert.Empty(t, SetYYYYMMDD(&dst, "dob", "20171332"))
	assert.Equal(t, Date{Year: 2017, Month: 13, Day: 32}, *dst.Date)

	assert.Len(t, SetYYYYMMDD(&dst, "dob", "07/10/2017"), 1)
}

func TestDateFieldJSON(t *testing.T) {
	tests := []struct {
		name string
		in   DateField
		want string
	}{
		{"decoded", DateField{Date: &Date{Year: 1990, Month: 1, Day: 1}}, `{"year":1990,"month":1,"day":1}`},
		{"raw", DateField{Raw: "1990011"}, `"1990011"`},
		{"absent", DateField{}, `""`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.in)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(b))

			var back DateField
			require.NoError(t, json.Unmarshal(b, &back))
			assert.Equal(t, tt.in, back)
		})
	}
}
