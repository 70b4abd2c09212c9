package session

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/fantasy-league-scraper/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rosePageHTML = `<html><body><a href="/logout">Esci</a><table><caption>Rose</caption></table></body></html>`

func newAuthenticatedGuard(t *testing.T) (*fakeBrowser, *Machine, *Guard) {
	t.Helper()

	b := newFakeBrowser()
	b.acceptLogin()
	b.pages[testBase+"/rose"] = rosePageHTML
	m := newTestMachine(b)
	require.NoError(t, m.Login(context.Background(), testCreds))

	g := NewGuard(b, m, testRules().Consent, logging.NewNop())
	return b, m, g
}

func TestGuard_GotoAuthenticatedPage(t *testing.T) {
	_, _, g := newAuthenticatedGuard(t)

	page, err := g.Goto(context.Background(), "rosters", testBase+"/rose")
	require.NoError(t, err)
	assert.Equal(t, testBase+"/rose", page.URL)
	require.NotNil(t, page.Doc)
	assert.Equal(t, "Rose", page.Doc.Find("caption").Text())
}

func TestGuard_RecoversOnceFromLostSession(t *testing.T) {
	b, m, g := newAuthenticatedGuard(t)
	b.redirects[testBase+"/rose"] = []string{testLoginURL}

	page, err := g.Goto(context.Background(), "rosters", testBase+"/rose")
	require.NoError(t, err)
	assert.Equal(t, testBase+"/rose", page.URL)
	assert.Equal(t, PhaseAuthenticated, m.Phase())
	assert.Len(t, b.setCookies, 1)
}

func TestGuard_SecondLossIsReturned(t *testing.T) {
	b, m, g := newAuthenticatedGuard(t)
	b.redirects[testBase+"/rose"] = []string{testLoginURL, testLoginURL}

	_, err := g.Goto(context.Background(), "rosters", testBase+"/rose")
	require.Error(t, err)

	var guardErr *GuardError
	require.True(t, errors.As(err, &guardErr))
	assert.Equal(t, "rosters", guardErr.Kind)
	assert.Equal(t, 2, guardErr.Attempts)
	assert.True(t, errors.Is(err, ErrSessionLostDuringNavigation))
	assert.Equal(t, PhaseDegraded, m.Phase())

	// the next kind still gets its own recovery
	page, err := g.Goto(context.Background(), "rosters", testBase+"/rose")
	require.NoError(t, err)
	assert.Equal(t, testBase+"/rose", page.URL)
}

func TestGuard_RequiresAuthenticatedSession(t *testing.T) {
	b := newFakeBrowser()
	m := newTestMachine(b)
	g := NewGuard(b, m, testRules().Consent, logging.NewNop())

	_, err := g.Goto(context.Background(), "standings", testBase+"/classifica")

	var guardErr *GuardError
	require.True(t, errors.As(err, &guardErr))
	assert.Equal(t, 1, guardErr.Attempts)
	assert.True(t, errors.Is(err, ErrNotAuthenticated))
	assert.Empty(t, b.navigations)
}

func TestGuard_DismissesConsentOverlay(t *testing.T) {
	b, _, g := newAuthenticatedGuard(t)
	b.elements[testBase+"/rose"] = map[string][]Element{
		testRules().Consent.ClickableSelector: {
			{Selector: "#ok", Text: "Accetta"},
			{Selector: "#essay", Text: "Accetta i termini e le condizioni di utilizzo di questo meraviglioso sito"},
			{Selector: "#menu", Text: "Classifica"},
		},
	}

	_, err := g.Goto(context.Background(), "rosters", testBase+"/rose")
	require.NoError(t, err)
	assert.Equal(t, []string{"#s", "#ok"}, b.clicks)
}
