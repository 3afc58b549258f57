// internal/fienta/usage_test.go
package fienta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUsage(t *testing.T) {
	testCases := []struct {
		name    string
		text    string
		want    Usage
		wantErr bool
	}{
		{
			name: "canonical plural form",
			text: "3 / 5 orders • 4 / 10 tickets",
			want: Usage{OrdersUsed: 3, OrderLimit: 5, TicketsUsed: 4, TicketLimit: 10},
		},
		{
			name: "singular form",
			text: "1 / 1 order, 1 / 2 ticket",
			want: Usage{OrdersUsed: 1, OrderLimit: 1, TicketsUsed: 1, TicketLimit: 2},
		},
		{
			name: "loose four-number fallback without labels",
			text: "SUMMER10 -10% 0/100 · 0/250",
			want: Usage{OrdersUsed: 0, OrderLimit: 100, TicketsUsed: 0, TicketLimit: 250},
		},
		{
			name: "extra whitespace around the slashes",
			text: "12 /  20 orders and 30/ 60 tickets",
			want: Usage{OrdersUsed: 12, OrderLimit: 20, TicketsUsed: 30, TicketLimit: 60},
		},
		{
			name:    "unrecognized text yields zero counters",
			text:    "unlimited",
			want:    Usage{},
			wantErr: true,
		},
		{
			name:    "single pair is not enough",
			text:    "5 / 10 orders",
			want:    Usage{},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseUsage(tc.text)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrParseMismatch)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tc.want, got)
		})
	}
}
