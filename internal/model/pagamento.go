// /internal/model/pagamento.go
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatusPagamento define os possíveis status de um depósito PIX.
type StatusPagamento string

const (
	StatusPendente  StatusPagamento = "pendente"
	StatusPago      StatusPagamento = "pago"
	StatusCancelado StatusPagamento = "cancelado"
)

// Pagamento representa um depósito PIX criado junto ao provedor.
// Ciclo de vida: nasce "pendente" e só transita para "pago" ou "cancelado",
// ambos terminais. Nenhuma outra transição é válida.
type Pagamento struct {
	ID        uint            `gorm:"primaryKey"`
	UsuarioID uint            `gorm:"not null"`
	Usuario   Usuario         `gorm:"foreignKey:UsuarioID"`
	Valor     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status    StatusPagamento `gorm:"type:varchar(20);not null;default:'pendente'"`
	// CodigoTransacao é o id opaco devolvido pelo gateway.
	CodigoTransacao string `gorm:"uniqueIndex;not null"`
	// ReferenciaExterna é o nosso identificador enviado ao gateway.
	ReferenciaExterna string `gorm:"uniqueIndex"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
