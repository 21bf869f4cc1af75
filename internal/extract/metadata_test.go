package extract

import (
	"testing"

	"github.com/stretchr/testify/require"

	apperr "github.com/callsight/callsight/internal/pkg/errors"

	"github.com/callsight/callsight/internal/model"
)

func int64Ptr(v int64) *int64       { return &v }
func float64Ptr(v float64) *float64 { return &v }

func TestCallMetadataDefaults(t *testing.T) {
	raw := &model.RawCall{
		CallID: int64Ptr(42),
		Parameters: &model.CallParameters{
			FileName: "call42.wav",
		},
	}
	rec, err := CallMetadata(raw)
	require.NoError(t, err)
	require.Equal(t, int64(42), rec.CallID)
	require.Equal(t, "call42.wav", rec.FileName)
	require.Equal(t, "Unknown", rec.AgentName)
	require.Equal(t, "Unknown", rec.CustomerName)
	require.Equal(t, float64(-1), rec.CallDuration)
	require.Equal(t, -1, rec.DateTime)
}

func TestCallMetadataAllFields(t *testing.T) {
	raw := &model.RawCall{
		CallID: int64Ptr(7),
		Parameters: &model.CallParameters{
			FileName:      "deal.wav",
			AgentName:     "Dana",
			CustomerName:  "Acme Corp",
			DurationSec:   float64Ptr(312.5),
			TimeDatestamp: "2026-08-27T10:00:00Z",
		},
	}
	rec, err := CallMetadata(raw)
	require.NoError(t, err)
	require.Equal(t, "Dana", rec.AgentName)
	require.Equal(t, "Acme Corp", rec.CustomerName)
	require.Equal(t, 312.5, rec.CallDuration)
	require.Equal(t, "2026-08-27T10:00:00Z", rec.DateTime)
}

func TestCallMetadataMissingFileName(t *testing.T) {
	cases := []*model.RawCall{
		{CallID: int64Ptr(1)},
		{CallID: int64Ptr(1), Parameters: &model.CallParameters{}},
		{CallID: int64Ptr(1), Parameters: &model.CallParameters{FileName: "   "}},
	}
	for _, raw := range cases {
		_, err := CallMetadata(raw)
		require.ErrorIs(t, err, apperr.ErrExtraction)
	}
}

func TestCallMetadataIsPure(t *testing.T) {
	raw := &model.RawCall{
		CallID: int64Ptr(9),
		Parameters: &model.CallParameters{
			FileName:  "x.wav",
			AgentName: "Lee",
		},
	}
	first, err := CallMetadata(raw)
	require.NoError(t, err)
	second, err := CallMetadata(raw)
	require.NoError(t, err)
	require.Equal(t, first, second)
}
