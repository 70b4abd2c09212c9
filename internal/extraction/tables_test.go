package extraction

import (
	"testing"

	"github.com/riskibarqy/fantasy-league-scraper/internal/domain/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandings_MapsHeaderColumnsAndDerivesDifference(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `<table>
<tr><th>Pos</th><th>Squadra</th><th>GF</th><th>GS</th><th>Pt</th></tr>
<tr><td>1</td><td>Dream Team</td><td>30</td><td>10</td><td>42</td></tr>
<tr><td>2°</td><td>Real Fanta</td><td>25</td><td>20</td><td>38,5</td></tr>
<tr><td></td><td>Broken</td><td></td><td></td><td>1</td></tr>
</table>`)
	result := Standings(doc, DefaultRules().Standings)

	require.Equal(t, OutcomeOK, result.Outcome)
	require.Len(t, result.Items, 2)
	assert.Equal(t, 1, result.Items[0].Position)
	assert.Equal(t, "Dream Team", result.Items[0].TeamName)
	assert.Equal(t, 42.0, result.Items[0].Points)
	assert.Equal(t, 20, result.Items[0].GoalDifference)
	assert.Equal(t, 2, result.Items[1].Position)
	assert.Equal(t, 38.5, result.Items[1].Points)
	assert.Equal(t, 5, result.Items[1].GoalDifference)
}

func TestStandings_PositionalFallback(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `<table>
<tr><td>1</td><td>Alpha</td><td>10</td><td>33</td></tr>
<tr><td>2</td><td>Beta</td><td>9</td><td>30</td></tr>
</table>`)
	result := Standings(doc, DefaultRules().Standings)

	require.Equal(t, OutcomeOK, result.Outcome)
	require.Len(t, result.Items, 2)
	assert.Equal(t, "Alpha", result.Items[0].TeamName)
	assert.Equal(t, 33.0, result.Items[0].Points)
}

func TestStandings_NoTablesIsEmpty(t *testing.T) {
	t.Parallel()

	result := Standings(mustDoc(t, `<div>Classifica non disponibile</div>`), DefaultRules().Standings)
	assert.Equal(t, OutcomeEmpty, result.Outcome)
}

func TestVotes_TeamFromHeadingAndMatchday(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `<h2>Voti Giornata 7</h2>
<h3>Dream Team</h3>
<table>
<tr><th>Calciatore</th><th>Voto</th></tr>
<tr><td>Sommer</td><td>6,5</td></tr>
<tr><td>Bastoni</td><td>s.v.</td></tr>
</table>
<table>
<tr><th>Giocatore</th><th>Squadra</th><th>FV</th></tr>
<tr><td>Leao</td><td>Real Fanta</td><td>9</td></tr>
</table>`)
	result := Votes(doc, DefaultRules().Votes)

	require.Equal(t, OutcomeOK, result.Outcome)
	require.Len(t, result.Items, 2)
	assert.Equal(t, "Sommer", result.Items[0].PlayerName)
	assert.Equal(t, "Dream Team", result.Items[0].TeamName)
	assert.Equal(t, 6.5, result.Items[0].Score)
	assert.Equal(t, 7, result.Items[0].Matchday)
	assert.Equal(t, "Real Fanta", result.Items[1].TeamName)
	assert.Equal(t, 9.0, result.Items[1].Score)
}

func TestVotes_UnmatchedTablesAreMalformed(t *testing.T) {
	t.Parallel()

	result := Votes(mustDoc(t, `<table><tr><th>Foo</th><th>Bar</th></tr><tr><td>1</td><td>2</td></tr></table>`), DefaultRules().Votes)
	assert.Equal(t, OutcomeMalformed, result.Outcome)
}

func TestLineups_StartersBenchAndFormation(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `<section class="lineups">
<div class="lineup">
  <h3 class="team-name">Dream Team</h3>
  <span class="formation">3-4-3</span>
  <ul class="titolari"><li>Sommer</li><li>Bastoni</li></ul>
  <ul class="panchina"><li>Carnesecchi</li></ul>
</div>
<div class="lineup">
  <h3 class="team-name">Real Fanta</h3>
  <ul><li>Maignan</li><li>Leao</li></ul>
</div>
<div class="lineup"><h3 class="team-name">No Players</h3></div>
</section>`)
	result := Lineups(doc, DefaultRules().Lineups)

	require.Equal(t, OutcomeOK, result.Outcome)
	require.Len(t, result.Items, 2)
	assert.Equal(t, "Dream Team", result.Items[0].TeamName)
	assert.Equal(t, "3-4-3", result.Items[0].Formation)
	assert.Equal(t, []string{"Sommer", "Bastoni"}, result.Items[0].Starters)
	assert.Equal(t, []string{"Carnesecchi"}, result.Items[0].Bench)
	assert.Equal(t, "Real Fanta", result.Items[1].TeamName)
	assert.Equal(t, []string{"Maignan", "Leao"}, result.Items[1].Starters)
	assert.Empty(t, result.Items[1].Bench)
}

func TestMarketMoves_InfersMoveType(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `<table>
<tr><th>Giocatore</th><th>Da</th><th>A</th><th>Prezzo</th></tr>
<tr><td>Lautaro</td><td>-</td><td>Dream Team</td><td>120</td></tr>
<tr><td>Sommer</td><td>Real Fanta</td><td></td><td></td></tr>
<tr><td>Barella</td><td>Real Fanta</td><td>Dream Team</td><td>50</td></tr>
<tr><td></td><td>X</td><td>Y</td><td>1</td></tr>
<tr><td>Nobody</td><td></td><td></td><td>1</td></tr>
</table>`)
	result := MarketMoves(doc, DefaultRules().Market)

	require.Equal(t, OutcomeOK, result.Outcome)
	require.Len(t, result.Items, 3)
	assert.Equal(t, market.MovePurchase, result.Items[0].MoveType)
	assert.Equal(t, 120.0, result.Items[0].Price)
	assert.Equal(t, "", result.Items[0].FromTeam)
	assert.Equal(t, market.MoveRelease, result.Items[1].MoveType)
	assert.Equal(t, market.MoveTransfer, result.Items[2].MoveType)
}

func TestMarketMoves_TypeColumnWins(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `<table>
<tr><th>Tipo</th><th>Calciatore</th><th>Cedente</th><th>Acquirente</th></tr>
<tr><td>Scambio</td><td>Leao</td><td></td><td>Dream Team</td></tr>
</table>`)
	result := MarketMoves(doc, DefaultRules().Market)

	require.Equal(t, OutcomeOK, result.Outcome)
	require.Len(t, result.Items, 1)
	assert.Equal(t, market.MoveTransfer, result.Items[0].MoveType)
}
