package repo

import "testing"

func TestPayout_TruncatesDown(t *testing.T) {
	tests := []struct {
		amount int64
		odds   float64
		want   int64
	}{
		{amount: 100, odds: 2.0, want: 200},
		{amount: 100, odds: 1.5, want: 150},
		{amount: 3, odds: 1.5, want: 4},    // 4.5 trunca pra 4
		{amount: 7, odds: 1.33, want: 9},   // 9.31 trunca pra 9
		{amount: 1, odds: 1.99, want: 1},   // nunca arredonda pra cima
		{amount: 200, odds: 3.75, want: 750},
		{amount: 50, odds: 2.333, want: 116}, // 116.65 trunca pra 116
	}
	for _, tc := range tests {
		got := Payout(tc.amount, tc.odds)
		if got != tc.want {
			t.Fatalf("Payout(%d, %v) = %d, want %d", tc.amount, tc.odds, got, tc.want)
		}
	}
}

func TestPayout_IsTotalReturnNotProfit(t *testing.T) {
	// odds multiplicam a stake inteira: o retorno inclui a stake consumida
	if got := Payout(100, 1.1); got != 110 {
		t.Fatalf("expected total return 110, got %d", got)
	}
}
