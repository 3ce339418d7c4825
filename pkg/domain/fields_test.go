package domain_test

import (
	"testing"

	"github.com/Myangsun/HiyaDrive/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestFields_Missing(t *testing.T) {
	f := domain.Fields{
		PartySize: domain.Int(2),
		Category:  domain.String("Italian"),
		Date:      domain.String("2024-11-22"),
		Time:      domain.String("  "),
	}

	assert.Equal(t, []string{domain.FieldLocation, domain.FieldTime}, f.Missing())
	assert.False(t, f.Complete())

	f.Location = domain.String("Boston")
	f.Time = domain.String("19:00")
	assert.True(t, f.Complete())
}

func TestFields_MergeLastWriteWins(t *testing.T) {
	f := domain.Fields{
		PartySize: domain.Int(2),
		Category:  domain.String("Italian"),
		Date:      domain.String("2024-11-22"),
		Time:      domain.String("19:00"),
	}

	written := f.Merge(domain.Fields{Location: domain.String("downtown"), Time: domain.String("20:00")})

	assert.Equal(t, []string{domain.FieldLocation, domain.FieldTime}, written)
	assert.Equal(t, "downtown", *f.Location)
	assert.Equal(t, "20:00", *f.Time)
	assert.Equal(t, 2, *f.PartySize)
	assert.Equal(t, "Italian", *f.Category)
	assert.Equal(t, "2024-11-22", *f.Date)
}

func TestFields_MergeIgnoresBlankAndCopies(t *testing.T) {
	src := domain.String("Boston")
	f := domain.Fields{}
	f.Merge(domain.Fields{Location: src, Category: domain.String("")})

	*src = "mutated"
	assert.Equal(t, "Boston", *f.Location, "merge must not alias the update")
	assert.Nil(t, f.Category)
}

func TestFields_Summary(t *testing.T) {
	f := domain.Fields{PartySize: domain.Int(4), Category: domain.String("sushi"), Location: domain.String("Cambridge")}
	assert.Equal(t, "a table for 4, sushi, near Cambridge", f.Summary())
	assert.True(t, domain.Fields{}.Empty())
}

func TestExtraction_Declined(t *testing.T) {
	assert.True(t, domain.Extraction{Confirmed: domain.Bool(false)}.Declined())
	assert.False(t, domain.Extraction{Confirmed: domain.Bool(true)}.Declined())
	assert.False(t, domain.Extraction{}.Declined())
}

func TestFields_Changes(t *testing.T) {
	f := domain.Fields{PartySize: domain.Int(2), Location: domain.String("Boston")}

	changes := f.Changes(domain.Fields{PartySize: domain.Int(2), Location: domain.String("Cambridge"), Time: domain.String("19:00")})

	assert.Nil(t, changes.PartySize)
	assert.Equal(t, "Cambridge", *changes.Location)
	assert.Equal(t, "19:00", *changes.Time)
	assert.True(t, f.Changes(f).Empty())
}
