package core

import (
	"testing"

	"github.com/cockroachdb/apd/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatFixed8(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"short_fraction", "0.1", "0.10000000"},
		{"integer", "100000", "100000.00000000"},
		{"exact_eight", "0.12345678", "0.12345678"},
		{"zero", "0", "0.00000000"},
		{"trailing_zeros_kept", "42.50", "42.50000000"},
		{"negative", "-1.5", "-1.50000000"},
		{"scientific", "1e-8", "0.00000001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _, err := apd.NewFromString(tt.input)
			require.NoError(t, err)

			got, err := FormatFixed8(d)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatFixed8_RoundsExcessPrecision(t *testing.T) {
	d, _, err := apd.NewFromString("0.123456789")
	require.NoError(t, err)

	got, err := FormatFixed8(d)
	require.NoError(t, err)
	assert.Equal(t, "0.12345679", got)
}

func TestParseDecimal(t *testing.T) {
	var d apd.Decimal
	require.NoError(t, ParseDecimal(&d, "99000.5"))
	assert.Equal(t, "99000.5", d.String())

	require.Error(t, ParseDecimal(&d, "not a number"))
}
