package kafka

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oceanbight/buoy-telemetry-etl/internal/domain"
)

func testResult() *domain.Result {
	return &domain.Result{
		Instrument: "metbk",
		NumRows:    2,
		LoadedAt:   time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		Columns: []domain.TypedColumn{
			{
				Name: "timestamp", Type: domain.TypeDatetime,
				Times: []time.Time{
					time.Date(2019, 5, 1, 0, 0, 0, 0, time.UTC),
					time.Date(2019, 5, 1, 0, 1, 0, 0, time.UTC),
				},
			},
			{Name: "serial", Type: domain.TypeInt, Ints: []int64{5781, 5781}},
			{Name: "buoy_id", Type: domain.TypeString, Strings: []string{"buoyID", "buoyID"}},
			{Name: "air_temperature", Type: domain.TypeFloat, Floats: []float64{15.1, math.NaN()}},
		},
	}
}

func TestRecordToMessage(t *testing.T) {
	res := testResult()

	msg, err := recordToMessage(res, 0)
	require.NoError(t, err)

	assert.Equal(t, "metbk-2019-05-01T00:00:00Z", string(msg.Key))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &doc))
	assert.Equal(t, "metbk", doc["instrument"])
	assert.Equal(t, "2019-05-01T00:00:00Z", doc["timestamp"])
	assert.Equal(t, float64(5781), doc["serial"])
	assert.Equal(t, "buoyID", doc["buoy_id"])
	assert.Equal(t, 15.1, doc["air_temperature"])

	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "instrument", msg.Headers[0].Key)
	assert.Equal(t, "metbk", string(msg.Headers[0].Value))
	assert.Equal(t, "loaded_at", msg.Headers[1].Key)
	assert.Equal(t, "2024-06-01T12:00:00Z", string(msg.Headers[1].Value))
}

func TestRecordToMessageNaN(t *testing.T) {
	res := testResult()

	msg, err := recordToMessage(res, 1)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &doc))

	v, present := doc["air_temperature"]
	require.True(t, present)
	assert.Nil(t, v, "sentinel floats serialize as JSON null")
}
