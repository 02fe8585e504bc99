// /internal/handler/respond.go
package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/gabrielmsouza/painel-consultas/internal/config"
)

// erroJSON devolve uma falha estruturada. A mensagem é sempre segura para
// exibição; o detalhe bruto só aparece em modo de desenvolvimento.
func erroJSON(c *gin.Context, cfg *config.Config, status int, mensagem string, err error) {
	corpo := gin.H{"success": false, "error": mensagem}
	if err != nil && cfg != nil && cfg.Dev() {
		corpo["details"] = err.Error()
	}
	c.JSON(status, corpo)
}
