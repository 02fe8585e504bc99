// /cmd/api/main.go
package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/joho/godotenv"

	"github.com/gabrielmsouza/painel-consultas/internal/config"
	"github.com/gabrielmsouza/painel-consultas/internal/database"
	"github.com/gabrielmsouza/painel-consultas/internal/gateway"
	"github.com/gabrielmsouza/painel-consultas/internal/handler"
	"github.com/gabrielmsouza/painel-consultas/internal/model"
	"github.com/gabrielmsouza/painel-consultas/internal/registry"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Arquivo .env não encontrado, usando o ambiente do processo.")
	}

	cfg := config.Load()
	if !cfg.Dev() {
		gin.SetMode(gin.ReleaseMode)
	}

	database.ConnectDB(cfg.DatabaseURL)
	database.SeedAdmin("admin@painelconsultas.com.br", "trocar-no-primeiro-acesso")

	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))

	gatewayClient := gateway.NewClient(gateway.Config{
		BaseURL:        cfg.GatewayBaseURL,
		ClientID:       cfg.GatewayClientID,
		ClientSecret:   cfg.GatewayClientSecret,
		CallbackURL:    cfg.GatewayCallbackURL,
		DepositoMinimo: cfg.DepositoMinimo,
	}, nil)
	registryClient := registry.NewClient(cfg.RegistryBaseURL, nil)

	authHandler := &handler.AuthHandler{Store: store, Cfg: cfg}
	paymentHandler := &handler.PaymentHandler{Cfg: cfg, Gateway: gatewayClient}
	webhookHandler := &handler.WebhookHandler{Cfg: cfg}
	consultaHandler := &handler.ConsultaHandler{Cfg: cfg, Registry: registryClient}
	adminHandler := &handler.AdminHandler{Cfg: cfg}

	router := gin.Default()

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "service": "painel-consultas"})
	})

	router.POST("/cadastro", authHandler.Cadastro)
	router.POST("/login", authHandler.Login)
	router.POST("/logout", authHandler.Logout)

	router.POST("/webhooks/pix", webhookHandler.ReceberCallback)

	autenticado := router.Group("/", authHandler.AuthRequired())
	{
		autenticado.POST("/pagamentos", paymentHandler.CriarPagamento)
		autenticado.GET("/pagamentos/:codigo/status", paymentHandler.StatusPagamento)
		autenticado.GET("/pagamentos/:codigo/qrcode", paymentHandler.QRCodePagamento)
		autenticado.GET("/saldo", consultaHandler.Saldo)
	}

	// Consultas aceitam sessão ou token de API.
	router.POST("/consultas", consultaHandler.TokenOuSessao(authHandler.AuthRequired()), consultaHandler.Consultar)

	admin := router.Group("/admin", authHandler.AuthRequired(), authHandler.RoleRequired(model.NivelAdministrador))
	{
		admin.GET("/usuarios", adminHandler.ListarUsuarios)
		admin.GET("/estatisticas", adminHandler.Estatisticas)
		admin.GET("/tokens", adminHandler.ListarTokens)
		admin.POST("/tokens", adminHandler.CriarToken)
		admin.DELETE("/tokens/:id", adminHandler.DesativarToken)
	}

	log.Printf("Servidor rodando na porta %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
