package tui_test

import (
	"bytes"
	"os"
	"testing"

	"github.com/Myangsun/HiyaDrive/internal/presentation/tui"
	"github.com/Myangsun/HiyaDrive/internal/testutils"
	"github.com/Myangsun/HiyaDrive/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport(t *testing.T) {
	s := domain.NewSessionState("driver-1", testutils.FullRequest)
	s.Fields = testutils.FullFields()
	_ = s.Select(testutils.Candidates()[2])
	_ = s.RecordConversation(testutils.Confirmed("4892"))
	s.Path = []string{domain.StepParseIntent, domain.StepConfirmBooking}
	_ = s.Finish(domain.StatusCompleted)

	md := tui.Report(s)

	assert.Contains(t, md, "# Reservation COMPLETED")
	assert.Contains(t, md, "**Restaurant**: Nonna's Kitchen")
	assert.Contains(t, md, "**Confirmation**: 4892")
	assert.Contains(t, md, "parse_intent → confirm_booking")
	assert.NotContains(t, md, "## Errors")
}

func TestReport_Errors(t *testing.T) {
	s := domain.NewSessionState("driver-1", "")
	s.AddError(domain.NewFailure(domain.KindExhausted, domain.StepCheckAvailability, "no free slot after 3 attempts", nil))
	_ = s.Finish(domain.StatusFailed)

	md := tui.Report(s)

	assert.Contains(t, md, "## Errors")
	assert.Contains(t, md, "no free slot after 3 attempts")
}

func TestRender_NotATerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "report")
	require.NoError(t, err)
	defer f.Close()

	assert.False(t, tui.IsTerminal(f))
	assert.Equal(t, "# plain", tui.Render(f, "# plain"))
}

func TestNewRenderer(t *testing.T) {
	out, err := tui.NewRenderer()("**bold**")
	require.NoError(t, err)
	assert.Contains(t, out, "bold")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf)
	assert.Contains(t, buf.String(), "|___/")
}
