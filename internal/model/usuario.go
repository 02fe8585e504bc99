// /internal/model/usuario.go
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	NivelVisitante     = "visitante"
	NivelAdministrador = "administrador"
)

// Usuario representa uma conta do portal. O saldo é mantido em créditos
// (decimal de duas casas) e nunca pode ficar negativo fora do débito
// condicional feito pelo pacote billing.
type Usuario struct {
	ID        uint            `gorm:"primaryKey"`
	Nome      string          `gorm:"not null"`
	Email     string          `gorm:"unique;not null"`
	SenhaHash string          `gorm:"not null"`
	Documento string          `gorm:"size:14"` // CPF (11) ou CNPJ (14), apenas dígitos
	Telefone  string          `gorm:"size:20"`
	Dominio   *string         `gorm:"uniqueIndex"` // escopo de cobrança das consultas; único por usuário
	Saldo     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Nivel     string          `gorm:"default:'visitante';not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
