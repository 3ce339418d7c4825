package testutils

import "github.com/Myangsun/HiyaDrive/pkg/domain"

// Utterances used across workflow tests.
const (
	FullRequest    = "Book a table for 2 at an Italian place in Boston on 2024-11-22 at 7pm"
	PartialRequest = "Book a table for 2 at an Italian place on 2024-11-22 at 7pm"
	Downtown       = "somewhere downtown"
)

// FullFields is what FullRequest extracts to.
func FullFields() domain.Fields {
	return domain.Fields{
		PartySize: domain.Int(2),
		Category:  domain.String("Italian"),
		Location:  domain.String("Boston"),
		Date:      domain.String("2024-11-22"),
		Time:      domain.String("19:00"),
	}
}

// PartialFields is FullFields without a location.
func PartialFields() domain.Fields {
	f := FullFields()
	f.Location = nil
	return f
}

// Candidates returns three providers with distinct scores, best last.
func Candidates() []domain.Candidate {
	return []domain.Candidate{
		{Name: "Pasta Place", Contact: "+1-617-555-0101", Location: "1 Main St", Score: 4.1},
		{Name: "Trattoria Roma", Contact: "+1-617-555-0102", Location: "2 Main St", Score: 4.5},
		{Name: "Nonna's Kitchen", Contact: "+1-617-555-0103", Location: "3 Main St", Score: 4.8},
	}
}

// Confirmed is a successful conversation outcome.
func Confirmed(token string) domain.ConversationResult {
	return domain.ConversationResult{
		BookingConfirmed:  true,
		ConfirmationToken: token,
		Transcript: []domain.TranscriptEntry{
			{Speaker: domain.SpeakerProvider, Text: "You're all set. Your confirmation number is " + token + "."},
		},
	}
}

// Declined is a conversation where the provider could not take the booking.
func Declined() domain.ConversationResult {
	return domain.ConversationResult{
		Transcript: []domain.TranscriptEntry{{Speaker: domain.SpeakerProvider, Text: "Sorry, we're fully booked."}},
	}
}
