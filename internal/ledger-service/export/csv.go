package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/radieske/campus-bet-ledger/internal/ledger-service/repo"
)

// header do relatório de apostas; a ordem das colunas é parte do contrato com
// quem importa a planilha
var header = []string{
	"roll_number", "name", "balance",
	"question", "option", "amount", "odds",
	"placed_at", "status", "payout",
}

// WriteBets escreve o relatório CSV de apostas. Só formata: nenhuma regra de
// negócio vive aqui, o payout já vem calculado na linha.
func WriteBets(w io.Writer, rows []repo.BetExportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.RollNumber,
			r.Name,
			strconv.FormatInt(r.Balance, 10),
			r.Question,
			r.Option,
			strconv.FormatInt(r.Amount, 10),
			strconv.FormatFloat(r.Odds, 'f', -1, 64),
			r.PlacedAt.UTC().Format(time.RFC3339),
			r.Status,
			strconv.FormatInt(r.Payout, 10),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
