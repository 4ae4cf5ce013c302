package rank

import (
	"math"
	"sort"
)

// Entrant é um usuário elegível para a classificação: não-admin e com pelo
// menos uma aposta registrada. Quem filtra a elegibilidade é a query, não este pacote.
type Entrant struct {
	UserID     string `json:"user_id"`
	RollNumber string `json:"roll_number"`
	Name       string `json:"name"`
	Balance    int64  `json:"balance"`
}

// Standing é uma posição na classificação final.
type Standing struct {
	Rank int `json:"rank"`
	Entrant
}

// Standings calcula a classificação por "competition ranking" denso:
// empates compartilham a menor posição e o próximo saldo distinto retoma na
// posição 1-based da caminhada (1,1,3,3,5). Ordena por saldo decrescente com
// desempate por UserID ascendente, para que o resultado seja determinístico
// independente da ordem de entrada.
// Função pura: mesma entrada, mesma saída, para qualquer consumidor.
func Standings(entrants []Entrant) []Standing {
	if len(entrants) == 0 {
		return []Standing{}
	}

	sorted := make([]Entrant, len(entrants))
	copy(sorted, entrants)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Balance != sorted[j].Balance {
			return sorted[i].Balance > sorted[j].Balance
		}
		return sorted[i].UserID < sorted[j].UserID
	})

	out := make([]Standing, 0, len(sorted))
	lastScore := int64(math.MinInt64) // sentinela abaixo de qualquer saldo válido
	lastRank := 0
	for i, e := range sorted {
		if e.Balance != lastScore {
			lastRank = i + 1
			lastScore = e.Balance
		}
		out = append(out, Standing{Rank: lastRank, Entrant: e})
	}
	return out
}
