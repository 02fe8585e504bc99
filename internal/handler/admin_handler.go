// /internal/handler/admin_handler.go
package handler

import (
	crand "crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gabrielmsouza/painel-consultas/internal/config"
	"github.com/gabrielmsouza/painel-consultas/internal/database"
	"github.com/gabrielmsouza/painel-consultas/internal/model"
)

// AdminHandler agrupa o console administrativo: usuários, tokens de API e
// estatísticas agregadas.
type AdminHandler struct {
	Cfg *config.Config
}

type usuarioResumo struct {
	ID      uint            `json:"id"`
	Nome    string          `json:"nome"`
	Email   string          `json:"email"`
	Dominio *string         `json:"dominio"`
	Saldo   decimal.Decimal `json:"saldo"`
	Nivel   string          `json:"nivel"`
}

// ListarUsuarios devolve todos os usuários, mais recentes primeiro.
func (h *AdminHandler) ListarUsuarios(c *gin.Context) {
	var usuarios []model.Usuario
	if err := database.DB.Order("created_at desc").Find(&usuarios).Error; err != nil {
		erroJSON(c, h.Cfg, http.StatusInternalServerError, "Erro ao buscar usuários.", err)
		return
	}

	resumos := make([]usuarioResumo, 0, len(usuarios))
	for _, u := range usuarios {
		resumos = append(resumos, usuarioResumo{
			ID: u.ID, Nome: u.Nome, Email: u.Email,
			Dominio: u.Dominio, Saldo: u.Saldo, Nivel: u.Nivel,
		})
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "usuarios": resumos})
}

// Estatisticas devolve os agregados exibidos no painel do administrador.
func (h *AdminHandler) Estatisticas(c *gin.Context) {
	var totalUsuarios, totalConsultas, pagamentosPendentes int64
	var totalDepositado, totalCobrado decimal.Decimal

	if err := database.DB.Model(&model.Usuario{}).Count(&totalUsuarios).Error; err != nil {
		erroJSON(c, h.Cfg, http.StatusInternalServerError, "Erro ao calcular estatísticas.", err)
		return
	}
	database.DB.Model(&model.Consulta{}).Count(&totalConsultas)
	database.DB.Model(&model.Pagamento{}).Where("status = ?", model.StatusPendente).Count(&pagamentosPendentes)
	database.DB.Model(&model.Pagamento{}).Where("status = ?", model.StatusPago).
		Select("COALESCE(SUM(valor), 0)").Scan(&totalDepositado)
	database.DB.Model(&model.Consulta{}).
		Select("COALESCE(SUM(custo), 0)").Scan(&totalCobrado)

	c.JSON(http.StatusOK, gin.H{
		"success":              true,
		"total_usuarios":       totalUsuarios,
		"total_consultas":      totalConsultas,
		"pagamentos_pendentes": pagamentosPendentes,
		"total_depositado":     totalDepositado,
		"total_cobrado":        totalCobrado,
	})
}

// TokenRequest espelha o JSON de criação de token de API.
type TokenRequest struct {
	Descricao string     `json:"descricao"`
	UsuarioID *uint      `json:"usuario_id"`
	ExpiraEm  *time.Time `json:"expira_em"`
}

// CriarToken gera um segredo aleatório de 32 bytes em hex e o cadastra.
func (h *AdminHandler) CriarToken(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		erroJSON(c, h.Cfg, http.StatusBadRequest, "Dados do token inválidos.", err)
		return
	}

	bruto := make([]byte, 32)
	if _, err := crand.Read(bruto); err != nil {
		erroJSON(c, h.Cfg, http.StatusInternalServerError, "Erro ao gerar o token.", err)
		return
	}

	token := model.ApiToken{
		Token:     hex.EncodeToString(bruto),
		Descricao: req.Descricao,
		UsuarioID: req.UsuarioID,
		ExpiraEm:  req.ExpiraEm,
		Ativo:     true,
	}
	if err := database.DB.Create(&token).Error; err != nil {
		erroJSON(c, h.Cfg, http.StatusInternalServerError, "Erro ao salvar o token.", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"token":   token.Token,
		"id":      token.ID,
	})
}

// ListarTokens devolve os tokens cadastrados, sem expor o segredo inteiro.
func (h *AdminHandler) ListarTokens(c *gin.Context) {
	var tokens []model.ApiToken
	if err := database.DB.Order("created_at desc").Find(&tokens).Error; err != nil {
		erroJSON(c, h.Cfg, http.StatusInternalServerError, "Erro ao buscar tokens.", err)
		return
	}

	type tokenResumo struct {
		ID        uint       `json:"id"`
		Prefixo   string     `json:"prefixo"`
		Descricao string     `json:"descricao"`
		UsuarioID *uint      `json:"usuario_id"`
		ExpiraEm  *time.Time `json:"expira_em"`
		Ativo     bool       `json:"ativo"`
	}
	resumos := make([]tokenResumo, 0, len(tokens))
	for _, t := range tokens {
		prefixo := t.Token
		if len(prefixo) > 8 {
			prefixo = prefixo[:8]
		}
		resumos = append(resumos, tokenResumo{
			ID: t.ID, Prefixo: prefixo, Descricao: t.Descricao,
			UsuarioID: t.UsuarioID, ExpiraEm: t.ExpiraEm, Ativo: t.Ativo,
		})
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "tokens": resumos})
}

// DesativarToken revoga um token. A linha permanece no banco para auditoria.
func (h *AdminHandler) DesativarToken(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		erroJSON(c, h.Cfg, http.StatusBadRequest, "ID inválido.", err)
		return
	}

	var token model.ApiToken
	if err := database.DB.First(&token, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			erroJSON(c, h.Cfg, http.StatusNotFound, "Token não encontrado.", nil)
			return
		}
		erroJSON(c, h.Cfg, http.StatusInternalServerError, "Erro ao buscar o token.", err)
		return
	}

	if err := database.DB.Model(&token).Update("ativo", false).Error; err != nil {
		erroJSON(c, h.Cfg, http.StatusInternalServerError, "Erro ao desativar o token.", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Token desativado."})
}
