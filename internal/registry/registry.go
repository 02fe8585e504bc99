// /internal/registry/registry.go
// Cliente da fonte de dados de CNPJ. O portal cobra a consulta e então busca
// os dados da empresa neste serviço externo.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	// ErrEmpresaNaoEncontrada indica CNPJ sem registro na fonte de dados.
	ErrEmpresaNaoEncontrada = errors.New("empresa não encontrada")
	// ErrRegistroIndisponivel embrulha falhas de comunicação com a fonte.
	ErrRegistroIndisponivel = errors.New("fonte de dados de CNPJ indisponível")
)

// Empresa são os dados cadastrais devolvidos pela fonte.
type Empresa struct {
	CNPJ         string `json:"cnpj"`
	RazaoSocial  string `json:"razao_social"`
	NomeFantasia string `json:"nome_fantasia"`
	Situacao     string `json:"situacao"`
	Abertura     string `json:"abertura"`
	Municipio    string `json:"municipio"`
	UF           string `json:"uf"`
}

// Client busca empresas por CNPJ em uma API HTTP configurável.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient cria o cliente da fonte de dados. httpClient pode ser nil.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: baseURL, http: httpClient}
}

// Buscar consulta o CNPJ (já validado e só com dígitos) na fonte de dados.
func (c *Client) Buscar(ctx context.Context, cnpj string) (*Empresa, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/cnpj/"+cnpj, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRegistroIndisponivel, err)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRegistroIndisponivel, err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusNotFound:
		return nil, ErrEmpresaNaoEncontrada
	case res.StatusCode < 200 || res.StatusCode > 299:
		corpo, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrRegistroIndisponivel, res.StatusCode, corpo)
	}

	var empresa Empresa
	if err := json.NewDecoder(res.Body).Decode(&empresa); err != nil {
		return nil, fmt.Errorf("%w: JSON malformado: %v", ErrRegistroIndisponivel, err)
	}
	return &empresa, nil
}
