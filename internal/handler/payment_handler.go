// /internal/handler/payment_handler.go
package handler

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gabrielmsouza/painel-consultas/internal/billing"
	"github.com/gabrielmsouza/painel-consultas/internal/config"
	"github.com/gabrielmsouza/painel-consultas/internal/gateway"
	"github.com/gabrielmsouza/painel-consultas/internal/model"
	"github.com/gabrielmsouza/painel-consultas/internal/qrcode"
)

type PaymentHandler struct {
	Cfg     *config.Config
	Gateway *gateway.Client
}

// PixRequest espelha o JSON enviado pelo frontend ao criar um depósito.
// O valor vem como string para não perder precisão decimal no caminho.
type PixRequest struct {
	Valor     string `json:"valor" binding:"required"`
	Documento string `json:"documento"`
}

// CriarPagamento valida a entrada, registra o depósito no gateway e só então
// grava o Pagamento pendente. Falha do gateway em qualquer etapa aborta tudo
// sem deixar estado parcial no banco.
func (h *PaymentHandler) CriarPagamento(c *gin.Context) {
	var req PixRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		erroJSON(c, h.Cfg, http.StatusBadRequest, "Dados do depósito inválidos.", err)
		return
	}

	valor, err := decimal.NewFromString(req.Valor)
	if err != nil {
		erroJSON(c, h.Cfg, http.StatusBadRequest, "Valor do depósito inválido.", err)
		return
	}

	userData, _ := c.Get("user")
	usuario := userData.(model.Usuario)

	docPagador := req.Documento
	if docPagador == "" {
		docPagador = usuario.Documento
	}

	deposito, err := h.Gateway.CriarDeposito(c.Request.Context(), valor, docPagador, usuario.Nome)
	if err != nil {
		switch {
		case errors.Is(err, gateway.ErrValorMinimo):
			erroJSON(c, h.Cfg, http.StatusBadRequest, "O depósito mínimo é de "+h.Cfg.DepositoMinimo.StringFixed(2)+" créditos.", err)
		case errors.Is(err, gateway.ErrDocumentoInvalido):
			erroJSON(c, h.Cfg, http.StatusBadRequest, "CPF do pagador inválido.", err)
		default:
			erroJSON(c, h.Cfg, http.StatusBadGateway, "Erro ao gerar PIX com o provedor.", err)
		}
		return
	}

	referencia := "deposito_" + uuid.New().String()
	pagamento, err := billing.RegistrarPendente(usuario.ID, valor, deposito.CodigoTransacao, referencia)
	if err != nil {
		erroJSON(c, h.Cfg, http.StatusInternalServerError, "Erro ao registrar o pagamento.", err)
		return
	}

	png, err := qrcode.Gerar(deposito.PixCopiaECola)
	if err != nil {
		erroJSON(c, h.Cfg, http.StatusInternalServerError, "Erro ao gerar o QR code.", err)
		return
	}
	if _, err := qrcode.Salvar(h.Cfg.QRCodeDir, deposito.CodigoTransacao, png); err != nil {
		// O base64 abaixo já atende o frontend; a imagem em disco é só
		// conveniência, então a falha vira aviso.
		fmt.Printf("Aviso: não foi possível salvar o QR code de %s: %v\n", deposito.CodigoTransacao, err)
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":          true,
		"status":           pagamento.Status,
		"codigo_transacao": pagamento.CodigoTransacao,
		"pix_copia_e_cola": deposito.PixCopiaECola,
		"qr_code_base64":   base64.StdEncoding.EncodeToString(png),
	})
}

// StatusPagamento é o endpoint de polling do frontend. Leitura idempotente.
func (h *PaymentHandler) StatusPagamento(c *gin.Context) {
	codigo := c.Param("codigo")

	status, err := billing.ConsultarStatus(codigo)
	if err != nil {
		if errors.Is(err, billing.ErrPagamentoNaoEncontrado) {
			erroJSON(c, h.Cfg, http.StatusNotFound, "Pagamento não encontrado.", nil)
			return
		}
		erroJSON(c, h.Cfg, http.StatusInternalServerError, "Erro ao consultar o pagamento.", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "codigo_transacao": codigo, "status": status})
}

// QRCodePagamento serve o PNG gravado para o código de transação.
func (h *PaymentHandler) QRCodePagamento(c *gin.Context) {
	codigo := c.Param("codigo")

	// O código vem do gateway, mas ainda assim nunca pode virar travessia
	// de diretório.
	if codigo == "" || codigo != filepath.Base(codigo) {
		erroJSON(c, h.Cfg, http.StatusBadRequest, "Código de transação inválido.", nil)
		return
	}

	caminho := filepath.Join(h.Cfg.QRCodeDir, codigo+".png")
	if _, err := os.Stat(caminho); err != nil {
		erroJSON(c, h.Cfg, http.StatusNotFound, "QR code não encontrado.", nil)
		return
	}
	c.File(caminho)
}
