package domain

import "github.com/shopspring/decimal"

// Cent é a menor unidade monetária aceita pela API.
var Cent = decimal.New(1, -2)

// RoundToCent arredonda para duas casas decimais (meio para longe do zero).
func RoundToCent(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ClampBid arredonda o lance para o centavo mais próximo e o restringe a [min, max].
// Os limites são ajustados para dentro do intervalo (min para cima, max para baixo),
// então o resultado sempre pertence a [min, max] e ClampBid(ClampBid(b)) == ClampBid(b).
func ClampBid(bid, minBid, maxBid decimal.Decimal) decimal.Decimal {
	lo := minBid.RoundCeil(2)
	hi := maxBid.RoundFloor(2)

	b := bid.Round(2)
	if b.LessThan(lo) {
		return lo
	}
	if b.GreaterThan(hi) {
		return hi
	}
	return b
}

// IsWholeCent informa se o valor não tem frações de centavo.
func IsWholeCent(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}
