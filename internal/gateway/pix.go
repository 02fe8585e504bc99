// /internal/gateway/pix.go
// Adaptador do provedor PIX: autentica com credenciais de cliente, cria o
// depósito e devolve o código de transação e o "copia e cola". Nenhuma
// chamada é repetida automaticamente; cada classe de falha vira um erro
// distinto para o chamador decidir.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gabrielmsouza/painel-consultas/internal/document"
)

var (
	// ErrValorMinimo indica depósito abaixo do valor mínimo configurado.
	ErrValorMinimo = errors.New("valor abaixo do depósito mínimo")
	// ErrDocumentoInvalido indica CPF do pagador reprovado na validação.
	ErrDocumentoInvalido = errors.New("documento do pagador inválido")
	// ErrRespostaInvalida indica resposta do gateway sem os campos esperados.
	ErrRespostaInvalida = errors.New("resposta do gateway sem os campos esperados")
)

// ErrGateway embrulha falhas de comunicação com o provedor (rede, status
// não-2xx, JSON malformado), preservando a etapa em que ocorreram.
type ErrGateway struct {
	Etapa string // "token" ou "deposito"
	Err   error
}

func (e *ErrGateway) Error() string {
	return fmt.Sprintf("gateway (%s): %v", e.Etapa, e.Err)
}

func (e *ErrGateway) Unwrap() error { return e.Err }

// Config são as credenciais e parâmetros do provedor, injetados pelo main.
type Config struct {
	BaseURL        string
	ClientID       string
	ClientSecret   string
	CallbackURL    string
	DepositoMinimo decimal.Decimal
}

// Client fala com o provedor PIX. Criar com NewClient.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient cria um cliente do gateway. httpClient pode ser nil, caso em que
// um cliente com timeout de 15s é usado.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{cfg: cfg, http: httpClient}
}

// Deposito é o resultado aceito pelo provedor.
type Deposito struct {
	CodigoTransacao string
	PixCopiaECola   string
}

type tokenResponse struct {
	AccessToken string `json:"accessToken"`
}

type depositRequest struct {
	Valor         string `json:"amount"`
	DocumentoCPF  string `json:"payerDocument"`
	NomePagador   string `json:"payerName"`
	Vencimento    string `json:"dueDate"`
	URLDeCallback string `json:"callbackUrl"`
}

type depositResponse struct {
	ID            string `json:"id"`
	PixCopiaECola string `json:"pixCopiaECola"`
}

// CriarDeposito valida a entrada, obtém um bearer token e registra o
// depósito no provedor. Nada é persistido aqui: o chamador só deve gravar o
// Pagamento depois que esta função retornar sem erro.
func (c *Client) CriarDeposito(ctx context.Context, valor decimal.Decimal, docPagador, nomePagador string) (*Deposito, error) {
	if valor.LessThan(c.cfg.DepositoMinimo) {
		return nil, ErrValorMinimo
	}
	docPagador = document.SomenteDigitos(docPagador)
	if len(docPagador) != 11 || !document.ValidarCPF(docPagador) {
		return nil, ErrDocumentoInvalido
	}

	token, err := c.obterToken(ctx)
	if err != nil {
		return nil, err
	}

	reqBody := depositRequest{
		Valor:         valor.StringFixed(2),
		DocumentoCPF:  docPagador,
		NomePagador:   nomePagador,
		Vencimento:    time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		URLDeCallback: c.cfg.CallbackURL,
	}

	var resp depositResponse
	if err := c.postJSON(ctx, "/deposits", token, reqBody, &resp, "deposito"); err != nil {
		return nil, err
	}
	if resp.ID == "" || resp.PixCopiaECola == "" {
		return nil, ErrRespostaInvalida
	}

	return &Deposito{CodigoTransacao: resp.ID, PixCopiaECola: resp.PixCopiaECola}, nil
}

// obterToken troca as credenciais estáticas por um bearer token.
func (c *Client) obterToken(ctx context.Context) (string, error) {
	body := map[string]string{
		"clientId": c.cfg.ClientID,
		"secret":   c.cfg.ClientSecret,
	}

	var resp tokenResponse
	if err := c.postJSON(ctx, "/token", "", body, &resp, "token"); err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", &ErrGateway{Etapa: "token", Err: ErrRespostaInvalida}
	}
	return resp.AccessToken, nil
}

// postJSON envia um POST JSON e decodifica a resposta, convertendo cada
// classe de falha em ErrGateway da etapa informada.
func (c *Client) postJSON(ctx context.Context, path, bearer string, in, out any, etapa string) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return &ErrGateway{Etapa: etapa, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return &ErrGateway{Etapa: etapa, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return &ErrGateway{Etapa: etapa, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		corpo, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return &ErrGateway{Etapa: etapa, Err: fmt.Errorf("status %d: %s", res.StatusCode, corpo)}
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return &ErrGateway{Etapa: etapa, Err: fmt.Errorf("JSON malformado: %w", err)}
	}
	return nil
}
