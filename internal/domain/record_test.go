package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecordKeepsInsertionOrder(t *testing.T) {
	rec := NewRecord()
	rec.Set("z", "1")
	rec.Set("a", "2")
	rec.Set("m", "3")
	rec.Set("a", "overwritten") // re-set keeps the original position

	require.Equal(t, []string{"z", "a", "m"}, rec.Keys())
	require.Equal(t, "overwritten", rec.GetString("a"))

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	require.Equal(t, `{"z":"1","a":"overwritten","m":"3"}`, string(data))
}

func TestRecordRoundTripsByteIdentically(t *testing.T) {
	src := `{"futbin_url":"https://example.com/player/1/x","rating":94,"traits":"Flair,Leadership"}`

	rec := NewRecord()
	require.NoError(t, json.Unmarshal([]byte(src), rec))
	out, err := json.Marshal(rec)
	require.NoError(t, err)
	require.Equal(t, src, string(out))
}

func TestRecordGetString(t *testing.T) {
	rec := NewRecord()
	require.NoError(t, json.Unmarshal([]byte(`{"s":"text","n":85}`), rec))

	require.Equal(t, "text", rec.GetString("s"))
	require.Equal(t, "85", rec.GetString("n"))
	require.Equal(t, "", rec.GetString("absent"))

	v, ok := rec.Get("n")
	require.True(t, ok)
	require.Equal(t, json.Number("85"), v)
}

func TestRecordRejectsNonObject(t *testing.T) {
	rec := NewRecord()
	require.Error(t, json.Unmarshal([]byte(`[1,2]`), rec))
}
