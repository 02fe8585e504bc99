// /internal/model/api_token.go
package model

import "time"

// ApiToken dá acesso à API de consultas para integrações externas.
// Revogação é feita desativando o token (Ativo = false), nunca apagando.
type ApiToken struct {
	ID        uint   `gorm:"primaryKey"`
	Token     string `gorm:"unique;not null;size:64"` // 32 bytes aleatórios em hex
	Descricao string
	UsuarioID *uint
	Usuario   *Usuario `gorm:"foreignKey:UsuarioID"`
	ExpiraEm  *time.Time
	Ativo     bool `gorm:"default:true;not null"`
	CreatedAt time.Time
}

// Valido informa se o token pode ser usado no instante dado.
func (t *ApiToken) Valido(agora time.Time) bool {
	if !t.Ativo {
		return false
	}
	if t.ExpiraEm != nil && agora.After(*t.ExpiraEm) {
		return false
	}
	return true
}
