package mock_test

import (
	"context"
	"testing"
	"time"

	"github.com/Myangsun/HiyaDrive/pkg/adapters/mock"
	"github.com/Myangsun/HiyaDrive/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Friday 2024-11-15.
func friday() time.Time { return time.Date(2024, 11, 15, 9, 0, 0, 0, time.UTC) }

func TestExtractor_Fields(t *testing.T) {
	e := mock.NewExtractor(mock.WithClock(friday))

	tests := []struct {
		text string
		want domain.Fields
	}{
		{
			text: "Book a table for 2 at an Italian place in Boston on 2024-11-22 at 7pm",
			want: domain.Fields{
				PartySize: domain.Int(2),
				Category:  domain.String("Italian"),
				Location:  domain.String("Boston"),
				Date:      domain.String("2024-11-22"),
				Time:      domain.String("19:00"),
			},
		},
		{
			text: "sushi for four near Harvard Square tomorrow at 7:30 pm",
			want: domain.Fields{
				PartySize: domain.Int(4),
				Category:  domain.String("Sushi"),
				Location:  domain.String("Harvard Square"),
				Date:      domain.String("2024-11-16"),
				Time:      domain.String("19:30"),
			},
		},
		{
			text: "6 people, Thai, next Friday 20:15",
			want: domain.Fields{
				PartySize: domain.Int(6),
				Category:  domain.String("Thai"),
				Date:      domain.String("2024-11-22"),
				Time:      domain.String("20:15"),
			},
		},
		{
			text: "somewhere downtown",
			want: domain.Fields{Location: domain.String("downtown")},
		},
		{
			text: "dinner for 7 pm",
			want: domain.Fields{Time: domain.String("19:00")},
		},
		{
			text: "monday at noon",
			want: domain.Fields{Date: domain.String("2024-11-18"), Time: domain.String("12:00")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := e.Extract(context.Background(), tt.text, domain.Fields{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Fields)
		})
	}
}

func TestExtractor_Confirmation(t *testing.T) {
	e := mock.NewExtractor()

	yes, _ := e.Extract(context.Background(), "Yes, that's right", domain.Fields{})
	require.NotNil(t, yes.Confirmed)
	assert.True(t, *yes.Confirmed)

	no, _ := e.Extract(context.Background(), "No.", domain.Fields{})
	assert.True(t, no.Declined())

	none, _ := e.Extract(context.Background(), "for 3 people", domain.Fields{})
	assert.Nil(t, none.Confirmed)
}
