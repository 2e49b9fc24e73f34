package dto

import "glampstay/internal/domain/shared/money"

// MoneyDTO carries integer minor units; Display is for humans only.
type MoneyDTO struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Display  string `json:"display"`
}

func MapMoney(value money.Money) MoneyDTO {
	return MoneyDTO{
		Amount:   value.Amount,
		Currency: value.Currency,
		Display:  value.String(),
	}
}
