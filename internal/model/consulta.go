// /internal/model/consulta.go
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Consulta registra uma consulta de CNPJ já cobrada. A linha é imutável:
// uma vez gravada nunca é alterada nem removida.
type Consulta struct {
	ID        uint   `gorm:"primaryKey"`
	Documento string `gorm:"size:14;not null"` // CNPJ consultado, apenas dígitos
	// DominioOrigem é o escopo de cobrança, não o usuário diretamente.
	DominioOrigem string          `gorm:"not null;index"`
	Custo         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt     time.Time
}
