package catalog

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luzza07/artist-management-backend/internal/apperr"
)

func TestCSVRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	in := []Artist{
		{Name: "Nina", Bio: "Line one\nline two", Nationality: "US"},
		{Name: "Ali \"Farka\"", Bio: "", Nationality: "ML"},
	}
	require.NoError(t, WriteArtistsCSV(&buf, in))

	rows, err := ReadArtistsCSV(&buf)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Line one\nline two", *rows[0].Bio)
	assert.Equal(t, "Ali \"Farka\"", *rows[1].Name)
}

func TestReadArtistsCSV_HeaderOrderAndBOM(t *testing.T) {
	rows, err := ReadArtistsCSV(strings.NewReader("\ufeffNationality,Name,Bio\nUS,Nina,Singer\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Nina", *rows[0].Name)
	assert.Equal(t, "US", *rows[0].Nationality)
}

func TestReadArtistsCSV_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		msg   string
	}{
		{"empty", "", "empty CSV file"},
		{"missing column", "name,bio\nNina,Singer\n", "invalid CSV header"},
		{"header only", "name,bio,nationality\n", "no artist rows"},
		{"ragged row", "name,bio,nationality\nNina,Singer\n", "malformed CSV on line 2"},
		{"blank name", "name,bio,nationality\nNina,a,US\n  ,b,US\n", "invalid row on line 3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadArtistsCSV(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.True(t, apperr.Is(err, apperr.KindValidation))
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestDuration(t *testing.T) {
	for in, want := range map[string]Duration{
		"00:03:05": 185,
		"1:00:00":  3600,
		"04:30":    270,
	} {
		got, err := ParseDuration(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, bad := range []string{"", "3", "00:61:00", "a:b:c", "-1:00:00", "999999:00:00", "99999999999999:00"} {
		_, err := ParseDuration(bad)
		assert.Error(t, err, bad)
	}

	b, err := json.Marshal(Duration(3725))
	require.NoError(t, err)
	assert.Equal(t, `"01:02:05"`, string(b))

	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`90`), &d))
	assert.Equal(t, Duration(90), d)
	assert.Error(t, json.Unmarshal([]byte(`-5`), &d))
	assert.Error(t, json.Unmarshal([]byte(`3000000000`), &d))

	got, err := ParseDuration("596523:14:07")
	require.NoError(t, err)
	assert.Equal(t, MaxDuration, got)
}
