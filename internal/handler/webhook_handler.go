// /internal/handler/webhook_handler.go
package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gabrielmsouza/painel-consultas/internal/billing"
	"github.com/gabrielmsouza/painel-consultas/internal/config"
)

// WebhookHandler recebe os callbacks de status do provedor PIX. Todo corpo
// deve vir assinado com HMAC-SHA256 da chave compartilhada; sem assinatura
// válida nada é lido do banco.
type WebhookHandler struct {
	Cfg *config.Config
}

const cabecalhoAssinatura = "X-Assinatura"

// callbackPix espelha o JSON enviado pelo provedor.
type callbackPix struct {
	CodigoTransacao string `json:"transactionId"`
	Status          string `json:"status"` // "paid" | "cancelled" | "expired"
}

// Assinar calcula a assinatura esperada para um corpo, em hex. Exportado
// para os testes e para ferramentas de integração.
func Assinar(segredo string, corpo []byte) string {
	mac := hmac.New(sha256.New, []byte(segredo))
	mac.Write(corpo)
	return hex.EncodeToString(mac.Sum(nil))
}

// ReceberCallback valida a assinatura e aplica a transição de status.
// Transições fora de "pendente" são rejeitadas; o provedor que reenviar um
// callback já aplicado recebe 409 e não altera nada.
func (h *WebhookHandler) ReceberCallback(c *gin.Context) {
	corpo, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<16))
	if err != nil {
		erroJSON(c, h.Cfg, http.StatusBadRequest, "Corpo do callback ilegível.", err)
		return
	}

	assinatura := c.GetHeader(cabecalhoAssinatura)
	esperada := Assinar(h.Cfg.WebhookSecret, corpo)
	if assinatura == "" || !hmac.Equal([]byte(assinatura), []byte(esperada)) {
		erroJSON(c, h.Cfg, http.StatusUnauthorized, "Assinatura do callback inválida.", nil)
		return
	}

	var callback callbackPix
	if err := json.Unmarshal(corpo, &callback); err != nil {
		erroJSON(c, h.Cfg, http.StatusBadRequest, "JSON do callback inválido.", err)
		return
	}

	switch callback.Status {
	case "paid":
		_, err = billing.ConfirmarPagamento(callback.CodigoTransacao)
	case "cancelled", "expired":
		err = billing.CancelarPagamento(callback.CodigoTransacao)
	default:
		erroJSON(c, h.Cfg, http.StatusBadRequest, "Status de callback desconhecido.", nil)
		return
	}

	if err != nil {
		switch {
		case errors.Is(err, billing.ErrPagamentoNaoEncontrado):
			erroJSON(c, h.Cfg, http.StatusNotFound, "Pagamento não encontrado.", nil)
		case errors.Is(err, billing.ErrTransicaoInvalida):
			erroJSON(c, h.Cfg, http.StatusConflict, "Pagamento já está em status terminal.", nil)
		default:
			erroJSON(c, h.Cfg, http.StatusInternalServerError, "Erro ao atualizar o pagamento.", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
