package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/campus-bet-ledger/internal/ledger-service/repo"
)

func TestWriteBets(t *testing.T) {
	rows := []repo.BetExportRow{
		{
			RollNumber: "21BCE001", Name: "Alice", Balance: 350,
			Question: "Quem vence a final?", Option: "Time A",
			Amount: 100, Odds: 1.5,
			PlacedAt: time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC),
			Status:   repo.StatusWon, Payout: 150,
		},
		{
			RollNumber: "21BCE002", Name: "Bob", Balance: 100,
			Question: "Quem vence a final?", Option: "Time B",
			Amount: 100, Odds: 2.25,
			PlacedAt: time.Date(2025, 3, 1, 12, 31, 0, 0, time.UTC),
			Status:   repo.StatusLost, Payout: 0,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteBets(&buf, rows))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, header, records[0])
	assert.Equal(t, []string{
		"21BCE001", "Alice", "350",
		"Quem vence a final?", "Time A", "100", "1.5",
		"2025-03-01T12:30:00Z", "WON", "150",
	}, records[1])
	assert.Equal(t, "LOST", records[2][8])
	assert.Equal(t, "0", records[2][9])
}

func TestWriteBets_EmptyStillWritesHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBets(&buf, nil))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, header, records[0])
}
