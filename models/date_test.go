package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateJSON(t *testing.T) {
	var r DateRange
	require.NoError(t, json.Unmarshal([]byte(`{"start":"2026-01-30","end":"2026-02-02"}`), &r))
	assert.Equal(t, 4, r.Days())
	assert.True(t, r.Contains(MustDate("2026-02-01")))
	assert.False(t, r.Contains(MustDate("2026-02-03")))

	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":"2026-01-30","end":"2026-02-02"}`, string(out))

	var d Date
	require.Error(t, json.Unmarshal([]byte(`"02/01/2026"`), &d))
	require.NoError(t, json.Unmarshal([]byte(`null`), &d))
	assert.True(t, d.IsZero())
}

func TestDateArithmetic(t *testing.T) {
	d := MustDate("2026-01-31")
	assert.Equal(t, "2026-02-01", d.AddDays(1).String())
	assert.Equal(t, 28, MustDate("2026-02-10").DaysInMonth())
	assert.Equal(t, 29, MustDate("2028-02-10").DaysInMonth())
	assert.Equal(t, "2026-03-01", MustDate("2026-03-19").FirstOfMonth().String())
	assert.Equal(t, 365, MustDate("2026-01-01").DaysUntil(MustDate("2027-01-01")))
	assert.Equal(t, "2026-03-01", MaxDate(MustDate("2026-03-01"), MustDate("2026-02-01")).String())
}

func TestOptimizationRequestDefaults(t *testing.T) {
	req := NewOptimizationRequest()
	require.NoError(t, json.Unmarshal([]byte(`{"destinations":[{"destination_id":1,"nights":2}],"top_k":5}`), &req))
	assert.Equal(t, []string{SearchNormal}, req.SearchTypes)
	assert.True(t, req.UseCache)
	assert.Equal(t, 5, req.TopK)
	assert.Equal(t, "USD", req.Currency)
	assert.Equal(t, DefaultOptimizationTimeMS, req.MaxOptimizationTimeMS)

	var bare OptimizationRequest
	bare.ApplyDefaults()
	assert.Equal(t, 1, bare.Guests.Adults)
	assert.Equal(t, 3, bare.TopK)
	assert.Equal(t, "USD", bare.Currency)

	lower := OptimizationRequest{Currency: " eur"}
	lower.ApplyDefaults()
	assert.Equal(t, "EUR", lower.Currency)
}
