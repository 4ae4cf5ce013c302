package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandings_DenseCompetitionTies(t *testing.T) {
	entrants := []Entrant{
		{UserID: "u3", RollNumber: "21BCE003", Name: "Carol", Balance: 190},
		{UserID: "u1", RollNumber: "21BCE001", Name: "Alice", Balance: 200},
		{UserID: "u5", RollNumber: "21BCE005", Name: "Eve", Balance: 180},
		{UserID: "u2", RollNumber: "21BCE002", Name: "Bob", Balance: 200},
		{UserID: "u4", RollNumber: "21BCE004", Name: "Dave", Balance: 190},
	}

	out := Standings(entrants)
	require.Len(t, out, 5)

	ranks := make([]int, 0, len(out))
	for _, s := range out {
		ranks = append(ranks, s.Rank)
	}
	assert.Equal(t, []int{1, 1, 3, 3, 5}, ranks)

	// Empatados compartilham o numeral e saem em ordem de UserID
	assert.Equal(t, "u1", out[0].UserID)
	assert.Equal(t, "u2", out[1].UserID)
	assert.Equal(t, "u3", out[2].UserID)
	assert.Equal(t, "u4", out[3].UserID)
	assert.Equal(t, "u5", out[4].UserID)
}

func TestStandings_Empty(t *testing.T) {
	out := Standings(nil)
	require.NotNil(t, out)
	assert.Empty(t, out)

	out = Standings([]Entrant{})
	assert.Empty(t, out)
}

func TestStandings_SingleEntrant(t *testing.T) {
	out := Standings([]Entrant{{UserID: "u1", Balance: 50}})
	require.Len(t, out, 1)
	assert.Equal(t, 1, out[0].Rank)
}

func TestStandings_AllTied(t *testing.T) {
	out := Standings([]Entrant{
		{UserID: "b", Balance: 100},
		{UserID: "a", Balance: 100},
		{UserID: "c", Balance: 100},
	})
	require.Len(t, out, 3)
	for _, s := range out {
		assert.Equal(t, 1, s.Rank)
	}
	assert.Equal(t, "a", out[0].UserID)
	assert.Equal(t, "c", out[2].UserID)
}

func TestStandings_ZeroBalanceStillRanked(t *testing.T) {
	// Saldo zerado não exclui da classificação; elegibilidade é ter apostado
	out := Standings([]Entrant{
		{UserID: "u1", Balance: 0},
		{UserID: "u2", Balance: 10},
	})
	require.Len(t, out, 2)
	assert.Equal(t, "u2", out[0].UserID)
	assert.Equal(t, 1, out[0].Rank)
	assert.Equal(t, "u1", out[1].UserID)
	assert.Equal(t, 2, out[1].Rank)
}

func TestStandings_Deterministic(t *testing.T) {
	entrants := []Entrant{
		{UserID: "u2", Balance: 300},
		{UserID: "u1", Balance: 300},
		{UserID: "u3", Balance: 250},
		{UserID: "u4", Balance: 250},
		{UserID: "u5", Balance: 100},
	}
	first := Standings(entrants)
	second := Standings(entrants)
	assert.Equal(t, first, second)

	// Ordem de entrada invertida produz a mesma saída
	reversed := make([]Entrant, 0, len(entrants))
	for i := len(entrants) - 1; i >= 0; i-- {
		reversed = append(reversed, entrants[i])
	}
	assert.Equal(t, first, Standings(reversed))
}

func TestStandings_DoesNotMutateInput(t *testing.T) {
	entrants := []Entrant{
		{UserID: "u1", Balance: 10},
		{UserID: "u2", Balance: 20},
	}
	Standings(entrants)
	assert.Equal(t, "u1", entrants[0].UserID)
	assert.Equal(t, "u2", entrants[1].UserID)
}
