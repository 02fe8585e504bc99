// /internal/handler/webhook_handler_test.go
package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/gabrielmsouza/painel-consultas/internal/billing"
	"github.com/gabrielmsouza/painel-consultas/internal/config"
	"github.com/gabrielmsouza/painel-consultas/internal/database"
	"github.com/gabrielmsouza/painel-consultas/internal/model"
	"github.com/gabrielmsouza/painel-consultas/internal/testutil"
)

func configDeTeste(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DeploymentEnv:  "development",
		WebhookSecret:  "segredo-webhook-teste",
		QRCodeDir:      t.TempDir(),
		DepositoMinimo: decimal.RequireFromString("400.00"),
		CustoConsulta:  decimal.RequireFromString("0.12"),
	}
}

func criaUsuarioComDominio(t *testing.T, dominio, saldo string) *model.Usuario {
	t.Helper()
	d := dominio
	usuario := model.Usuario{
		Nome:      "Usuário de Teste",
		Email:     fmt.Sprintf("teste_%s_%d@example.com", dominio, time.Now().UnixNano()),
		SenhaHash: "irrelevante",
		Dominio:   &d,
		Saldo:     decimal.RequireFromString(saldo),
	}
	if err := database.DB.Create(&usuario).Error; err != nil {
		t.Fatalf("erro ao criar usuário de teste: %v", err)
	}
	return &usuario
}

func setupWebhookRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := &WebhookHandler{Cfg: cfg}
	router.POST("/webhooks/pix", h.ReceberCallback)
	return router
}

func enviaCallback(router *gin.Engine, corpo, assinatura string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/pix", bytes.NewReader([]byte(corpo)))
	req.Header.Set("Content-Type", "application/json")
	if assinatura != "" {
		req.Header.Set(cabecalhoAssinatura, assinatura)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestWebhookConfirmaPagamento(t *testing.T) {
	testutil.ConnectTestDB(t)
	cfg := configDeTeste(t)
	router := setupWebhookRouter(cfg)

	usuario := criaUsuarioComDominio(t, "webhook-a.com.br", "0.00")
	if _, err := billing.RegistrarPendente(usuario.ID, decimal.RequireFromString("400.00"), "tx-wh-1", "ref-wh-1"); err != nil {
		t.Fatal(err)
	}

	corpo := `{"transactionId":"tx-wh-1","status":"paid"}`
	recorder := enviaCallback(router, corpo, Assinar(cfg.WebhookSecret, []byte(corpo)))

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, esperado 200. Corpo: %s", recorder.Code, recorder.Body.String())
	}

	status, err := billing.ConsultarStatus("tx-wh-1")
	if err != nil {
		t.Fatal(err)
	}
	if status != model.StatusPago {
		t.Errorf("status do pagamento = %s, esperado pago", status)
	}

	var atual model.Usuario
	database.DB.First(&atual, usuario.ID)
	if !atual.Saldo.Equal(decimal.RequireFromString("400.00")) {
		t.Errorf("saldo = %s, esperado 400.00", atual.Saldo)
	}
}

// Callback sem assinatura válida não toca em nada: um "pagamento concluído"
// forjado tem que ser barrado antes de qualquer leitura.
func TestWebhookAssinaturaInvalida(t *testing.T) {
	testutil.ConnectTestDB(t)
	cfg := configDeTeste(t)
	router := setupWebhookRouter(cfg)

	usuario := criaUsuarioComDominio(t, "webhook-b.com.br", "0.00")
	if _, err := billing.RegistrarPendente(usuario.ID, decimal.RequireFromString("400.00"), "tx-wh-2", "ref-wh-2"); err != nil {
		t.Fatal(err)
	}

	corpo := `{"transactionId":"tx-wh-2","status":"paid"}`

	t.Run("sem assinatura", func(t *testing.T) {
		recorder := enviaCallback(router, corpo, "")
		if recorder.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, esperado 401", recorder.Code)
		}
	})

	t.Run("assinatura forjada", func(t *testing.T) {
		recorder := enviaCallback(router, corpo, Assinar("outro-segredo", []byte(corpo)))
		if recorder.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, esperado 401", recorder.Code)
		}
	})

	status, err := billing.ConsultarStatus("tx-wh-2")
	if err != nil {
		t.Fatal(err)
	}
	if status != model.StatusPendente {
		t.Errorf("pagamento transitou para %s sem assinatura válida", status)
	}
}

func TestWebhookReenvioEStatusDesconhecido(t *testing.T) {
	testutil.ConnectTestDB(t)
	cfg := configDeTeste(t)
	router := setupWebhookRouter(cfg)

	usuario := criaUsuarioComDominio(t, "webhook-c.com.br", "0.00")
	if _, err := billing.RegistrarPendente(usuario.ID, decimal.RequireFromString("400.00"), "tx-wh-3", "ref-wh-3"); err != nil {
		t.Fatal(err)
	}

	corpo := `{"transactionId":"tx-wh-3","status":"paid"}`
	assinatura := Assinar(cfg.WebhookSecret, []byte(corpo))

	if recorder := enviaCallback(router, corpo, assinatura); recorder.Code != http.StatusOK {
		t.Fatalf("primeiro envio: status = %d", recorder.Code)
	}

	// Reenvio do mesmo callback: transição fora de pendente é rejeitada e o
	// saldo não é creditado de novo.
	if recorder := enviaCallback(router, corpo, assinatura); recorder.Code != http.StatusConflict {
		t.Errorf("reenvio: status = %d, esperado 409", recorder.Code)
	}

	var atual model.Usuario
	database.DB.First(&atual, usuario.ID)
	if !atual.Saldo.Equal(decimal.RequireFromString("400.00")) {
		t.Errorf("saldo após reenvio = %s, esperado 400.00", atual.Saldo)
	}

	corpoEstranho := `{"transactionId":"tx-wh-3","status":"refunded"}`
	if recorder := enviaCallback(router, corpoEstranho, Assinar(cfg.WebhookSecret, []byte(corpoEstranho))); recorder.Code != http.StatusBadRequest {
		t.Errorf("status desconhecido: esperado 400, obteve %d", recorder.Code)
	}
}

func TestWebhookCancelamento(t *testing.T) {
	testutil.ConnectTestDB(t)
	cfg := configDeTeste(t)
	router := setupWebhookRouter(cfg)

	usuario := criaUsuarioComDominio(t, "webhook-d.com.br", "0.00")
	if _, err := billing.RegistrarPendente(usuario.ID, decimal.RequireFromString("400.00"), "tx-wh-4", "ref-wh-4"); err != nil {
		t.Fatal(err)
	}

	corpo := `{"transactionId":"tx-wh-4","status":"expired"}`
	if recorder := enviaCallback(router, corpo, Assinar(cfg.WebhookSecret, []byte(corpo))); recorder.Code != http.StatusOK {
		t.Fatalf("status = %d", recorder.Code)
	}

	status, _ := billing.ConsultarStatus("tx-wh-4")
	if status != model.StatusCancelado {
		t.Errorf("status = %s, esperado cancelado", status)
	}

	var atual model.Usuario
	database.DB.First(&atual, usuario.ID)
	if !atual.Saldo.IsZero() {
		t.Errorf("cancelamento creditou saldo: %s", atual.Saldo)
	}
}
