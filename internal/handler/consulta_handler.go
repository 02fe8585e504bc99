// /internal/handler/consulta_handler.go
package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/gabrielmsouza/painel-consultas/internal/billing"
	"github.com/gabrielmsouza/painel-consultas/internal/config"
	"github.com/gabrielmsouza/painel-consultas/internal/database"
	"github.com/gabrielmsouza/painel-consultas/internal/document"
	"github.com/gabrielmsouza/painel-consultas/internal/model"
	"github.com/gabrielmsouza/painel-consultas/internal/registry"
)

// ConsultaHandler atende as consultas pagas de CNPJ. Aceita autenticação por
// sessão (frontend) ou por token de API (integrações).
type ConsultaHandler struct {
	Cfg      *config.Config
	Registry *registry.Client
}

const cabecalhoToken = "X-Api-Token"

// ConsultaRequest espelha o JSON de uma consulta.
type ConsultaRequest struct {
	Documento string `json:"documento" binding:"required"`
	// Dominio é opcional: quando ausente, usa o domínio do usuário
	// autenticado.
	Dominio string `json:"dominio"`
}

// TokenOuSessao autentica pelo X-Api-Token quando presente; caso contrário
// delega para o middleware de sessão recebido.
func (h *ConsultaHandler) TokenOuSessao(sessao gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		valor := c.GetHeader(cabecalhoToken)
		if valor == "" {
			sessao(c)
			return
		}

		var token model.ApiToken
		err := database.DB.Preload("Usuario").Where("token = ?", valor).First(&token).Error
		if err != nil || !token.Valido(time.Now()) {
			erroJSON(c, h.Cfg, http.StatusUnauthorized, "Token de API inválido ou expirado.", nil)
			c.Abort()
			return
		}

		if token.Usuario != nil {
			c.Set("user", *token.Usuario)
		}
		c.Set("apiToken", token)
		c.Next()
	}
}

// Consultar cobra o custo fixo do domínio e devolve os dados da empresa.
// A busca na fonte de dados vem antes do débito: consulta que não retorna
// empresa não é cobrada. O débito em si é um único UPDATE condicional, então
// duas consultas simultâneas nunca gastam o mesmo crédito.
func (h *ConsultaHandler) Consultar(c *gin.Context) {
	var req ConsultaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		erroJSON(c, h.Cfg, http.StatusBadRequest, "Dados da consulta inválidos.", err)
		return
	}

	cnpj := document.SomenteDigitos(req.Documento)
	if !document.ValidarCNPJ(cnpj) {
		erroJSON(c, h.Cfg, http.StatusBadRequest, "CNPJ inválido.", nil)
		return
	}

	dominio := strings.ToLower(strings.TrimSpace(req.Dominio))
	if dominio == "" {
		userData, exists := c.Get("user")
		if !exists {
			erroJSON(c, h.Cfg, http.StatusBadRequest, "Informe o domínio de cobrança.", nil)
			return
		}
		usuario := userData.(model.Usuario)
		if usuario.Dominio == nil || *usuario.Dominio == "" {
			erroJSON(c, h.Cfg, http.StatusBadRequest, "Sua conta não possui domínio de cobrança cadastrado.", nil)
			return
		}
		dominio = *usuario.Dominio
	}

	empresa, err := h.Registry.Buscar(c.Request.Context(), cnpj)
	if err != nil {
		switch {
		case errors.Is(err, registry.ErrEmpresaNaoEncontrada):
			erroJSON(c, h.Cfg, http.StatusNotFound, "CNPJ não encontrado na base de dados.", nil)
		default:
			erroJSON(c, h.Cfg, http.StatusBadGateway, "Fonte de dados indisponível. Tente novamente.", err)
		}
		return
	}

	consulta, err := billing.CobrarConsulta(dominio, cnpj, h.Cfg.CustoConsulta)
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrSaldoInsuficiente):
			erroJSON(c, h.Cfg, http.StatusPaymentRequired, "Saldo insuficiente. Faça um depósito para continuar.", nil)
		case errors.Is(err, billing.ErrDominioNaoEncontrado):
			erroJSON(c, h.Cfg, http.StatusNotFound, "Domínio de cobrança não cadastrado.", nil)
		default:
			erroJSON(c, h.Cfg, http.StatusInternalServerError, "Erro ao cobrar a consulta.", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"consulta": gin.H{"id": consulta.ID, "custo": consulta.Custo, "dominio": consulta.DominioOrigem},
		"empresa":  empresa,
	})
}

// Saldo devolve o saldo do domínio do usuário autenticado.
func (h *ConsultaHandler) Saldo(c *gin.Context) {
	userData, _ := c.Get("user")
	usuario := userData.(model.Usuario)

	// Relê o saldo para refletir débitos e créditos recentes.
	var atual model.Usuario
	if err := database.DB.First(&atual, usuario.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			erroJSON(c, h.Cfg, http.StatusNotFound, "Usuário não encontrado.", nil)
			return
		}
		erroJSON(c, h.Cfg, http.StatusInternalServerError, "Erro ao consultar o saldo.", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "saldo": atual.Saldo})
}
