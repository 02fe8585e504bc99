// /internal/handler/auth_handler.go
package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/gabrielmsouza/painel-consultas/internal/config"
	"github.com/gabrielmsouza/painel-consultas/internal/database"
	"github.com/gabrielmsouza/painel-consultas/internal/document"
	"github.com/gabrielmsouza/painel-consultas/internal/model"
)

const nomeSessao = "painel-consultas-session"

type AuthHandler struct {
	Store *sessions.CookieStore
	Cfg   *config.Config
}

// CadastroRequest espelha o JSON enviado pelo frontend no cadastro.
type CadastroRequest struct {
	Nome      string `json:"nome" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Senha     string `json:"senha" binding:"required,min=6"`
	Documento string `json:"documento"`
	Telefone  string `json:"telefone"`
	Dominio   string `json:"dominio"`
}

// Cadastro cria um novo usuário do portal. Documento, quando informado, deve
// ser um CPF ou CNPJ válido; o domínio é único entre todos os usuários.
func (h *AuthHandler) Cadastro(c *gin.Context) {
	var req CadastroRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		erroJSON(c, h.Cfg, http.StatusBadRequest, "Dados de cadastro inválidos.", err)
		return
	}

	if req.Documento != "" {
		doc := document.SomenteDigitos(req.Documento)
		if !document.ValidarCPF(doc) && !document.ValidarCNPJ(doc) {
			erroJSON(c, h.Cfg, http.StatusBadRequest, "Documento inválido: informe um CPF ou CNPJ válido.", nil)
			return
		}
		req.Documento = doc
	}

	senhaHash, err := bcrypt.GenerateFromPassword([]byte(req.Senha), bcrypt.DefaultCost)
	if err != nil {
		erroJSON(c, h.Cfg, http.StatusInternalServerError, "Erro ao processar a senha. Tente novamente.", err)
		return
	}

	novoUsuario := model.Usuario{
		Nome:      req.Nome,
		Email:     req.Email,
		SenhaHash: string(senhaHash),
		Documento: req.Documento,
		Telefone:  req.Telefone,
		Nivel:     model.NivelVisitante,
	}
	if req.Dominio != "" {
		dominio := strings.ToLower(strings.TrimSpace(req.Dominio))
		novoUsuario.Dominio = &dominio
	}

	result := database.DB.Create(&novoUsuario)
	if result.Error != nil {
		if strings.Contains(result.Error.Error(), "unique constraint") ||
			strings.Contains(result.Error.Error(), "duplicate key") ||
			strings.Contains(result.Error.Error(), "UNIQUE constraint") {
			erroJSON(c, h.Cfg, http.StatusConflict, "E-mail ou domínio já cadastrado.", result.Error)
			return
		}
		erroJSON(c, h.Cfg, http.StatusInternalServerError, "Erro ao criar usuário. Tente novamente.", result.Error)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Cadastro realizado com sucesso! Faça o login.",
		"id":      novoUsuario.ID,
	})
}

// LoginRequest espelha o JSON do formulário de login.
type LoginRequest struct {
	Email string `json:"email" binding:"required"`
	Senha string `json:"senha" binding:"required"`
}

// Login valida as credenciais e grava o usuário na sessão.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		erroJSON(c, h.Cfg, http.StatusBadRequest, "Dados de login inválidos.", err)
		return
	}

	var usuario model.Usuario
	result := database.DB.Where("email = ?", req.Email).First(&usuario)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			erroJSON(c, h.Cfg, http.StatusUnauthorized, "E-mail ou senha inválidos.", nil)
			return
		}
		erroJSON(c, h.Cfg, http.StatusInternalServerError, "Ocorreu um erro interno. Tente novamente.", result.Error)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(usuario.SenhaHash), []byte(req.Senha)); err != nil {
		erroJSON(c, h.Cfg, http.StatusUnauthorized, "E-mail ou senha inválidos.", nil)
		return
	}

	session, _ := h.Store.Get(c.Request, nomeSessao)
	session.Values["userID"] = usuario.ID
	if err := session.Save(c.Request, c.Writer); err != nil {
		erroJSON(c, h.Cfg, http.StatusInternalServerError, "Erro ao iniciar a sessão. Tente novamente.", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"usuario": gin.H{
			"id":    usuario.ID,
			"nome":  usuario.Nome,
			"email": usuario.Email,
			"nivel": usuario.Nivel,
			"saldo": usuario.Saldo,
		},
	})
}

// Logout encerra a sessão atual.
func (h *AuthHandler) Logout(c *gin.Context) {
	session, _ := h.Store.Get(c.Request, nomeSessao)
	session.Values["userID"] = nil
	session.Options.MaxAge = -1
	if err := session.Save(c.Request, c.Writer); err != nil {
		erroJSON(c, h.Cfg, http.StatusInternalServerError, "Erro ao encerrar a sessão.", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// AuthRequired exige sessão válida e injeta o usuário no contexto.
func (h *AuthHandler) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, _ := h.Store.Get(c.Request, nomeSessao)
		userID, ok := session.Values["userID"].(uint)
		if !ok {
			erroJSON(c, h.Cfg, http.StatusUnauthorized, "Autenticação necessária.", nil)
			c.Abort()
			return
		}

		var usuario model.Usuario
		if err := database.DB.First(&usuario, userID).Error; err != nil {
			session.Values["userID"] = nil
			session.Options.MaxAge = -1
			session.Save(c.Request, c.Writer)
			erroJSON(c, h.Cfg, http.StatusUnauthorized, "Sessão inválida. Faça login novamente.", nil)
			c.Abort()
			return
		}

		c.Set("user", usuario)
		c.Next()
	}
}

// RoleRequired verifica se o usuário autenticado tem o nível necessário.
func (h *AuthHandler) RoleRequired(nivel string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userData, exists := c.Get("user")
		if !exists {
			erroJSON(c, h.Cfg, http.StatusUnauthorized, "Autenticação necessária.", nil)
			c.Abort()
			return
		}

		usuario := userData.(model.Usuario)
		if usuario.Nivel != nivel {
			erroJSON(c, h.Cfg, http.StatusForbidden, "Acesso negado.", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
