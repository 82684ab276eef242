package accountnumber

import (
	"encoding/json"
	"testing"

	"github.com/mbhbank/account-service/shared/sentinel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	n, err := Parse("555555550000000000000042")
	require.NoError(t, err)
	assert.Equal(t, "555555550000000000000042", n.String())

	for _, bad := range []string{"", "12a4", "-1", "1.5", "1e10", "5555555500000000000000421"} {
		_, err := Parse(bad)
		assert.ErrorIs(t, err, sentinel.ErrInvalid, bad)
	}
}

func TestJSONRoundTripKeepsAllDigits(t *testing.T) {
	type wrapper struct {
		AccountNumber Number `json:"accountNumber"`
	}
	in := wrapper{AccountNumber: MustParse("555555550000000000000042")}

	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"accountNumber":555555550000000000000042}`, string(data))

	var out wrapper
	require.NoError(t, json.Unmarshal(data, &out))
	assert.True(t, in.AccountNumber.Equal(out.AccountNumber))
}

func TestUnmarshalAcceptsQuotedDigits(t *testing.T) {
	var n Number
	require.NoError(t, json.Unmarshal([]byte(`"12345678111111111"`), &n))
	assert.Equal(t, "12345678111111111", n.String())

	err := json.Unmarshal([]byte(`"abc"`), &n)
	assert.ErrorIs(t, err, sentinel.ErrInvalid)
}

func TestScan(t *testing.T) {
	var n Number
	require.NoError(t, n.Scan([]byte("555555550000000000000007")))
	assert.Equal(t, "555555550000000000000007", n.String())

	v, err := n.Value()
	require.NoError(t, err)
	assert.Equal(t, "555555550000000000000007", v)

	assert.ErrorIs(t, n.Scan("1.5"), sentinel.ErrInvalid)
}
