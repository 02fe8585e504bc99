// /internal/handler/consulta_handler_test.go
package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/gabrielmsouza/painel-consultas/internal/config"
	"github.com/gabrielmsouza/painel-consultas/internal/database"
	"github.com/gabrielmsouza/painel-consultas/internal/model"
	"github.com/gabrielmsouza/painel-consultas/internal/registry"
	"github.com/gabrielmsouza/painel-consultas/internal/testutil"
)

const cnpjValido = "11222333000181"

func fonteDeDadosFalsa(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cnpj/"+cnpjValido {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(registry.Empresa{
			CNPJ:        cnpjValido,
			RazaoSocial: "Empresa Exemplo LTDA",
			Situacao:    "ATIVA",
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

// setupConsultaRouter monta o router de consultas. Se usuario não for nil,
// ele é injetado no contexto como se a sessão o tivesse autenticado.
func setupConsultaRouter(cfg *config.Config, srv *httptest.Server, usuario *model.Usuario) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	h := &ConsultaHandler{Cfg: cfg, Registry: registry.NewClient(srv.URL, srv.Client())}
	sessaoFalsa := func(c *gin.Context) {
		if usuario == nil {
			erroJSON(c, cfg, http.StatusUnauthorized, "Autenticação necessária.", nil)
			c.Abort()
			return
		}
		c.Set("user", *usuario)
		c.Next()
	}
	router.POST("/consultas", h.TokenOuSessao(sessaoFalsa), h.Consultar)
	return router
}

func TestConsultarSucesso(t *testing.T) {
	testutil.ConnectTestDB(t)
	cfg := configDeTeste(t)
	usuario := criaUsuarioComDominio(t, "cons-a.com.br", "1.00")

	router := setupConsultaRouter(cfg, fonteDeDadosFalsa(t), usuario)

	recorder := postJSON(router, "/consultas", gin.H{"documento": cnpjValido})
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d. Corpo: %s", recorder.Code, recorder.Body.String())
	}

	var resp struct {
		Empresa registry.Empresa `json:"empresa"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Empresa.RazaoSocial != "Empresa Exemplo LTDA" {
		t.Errorf("empresa = %+v", resp.Empresa)
	}

	// Saldo debitado e consulta registrada.
	var atual model.Usuario
	database.DB.First(&atual, usuario.ID)
	if !atual.Saldo.Equal(decimal.RequireFromString("0.88")) {
		t.Errorf("saldo = %s, esperado 0.88", atual.Saldo)
	}
	var n int64
	database.DB.Model(&model.Consulta{}).Where("dominio_origem = ?", "cons-a.com.br").Count(&n)
	if n != 1 {
		t.Errorf("%d consultas registradas, esperado 1", n)
	}
}

func TestConsultarSaldoInsuficiente(t *testing.T) {
	testutil.ConnectTestDB(t)
	cfg := configDeTeste(t)
	usuario := criaUsuarioComDominio(t, "cons-b.com.br", "0.10")

	router := setupConsultaRouter(cfg, fonteDeDadosFalsa(t), usuario)

	recorder := postJSON(router, "/consultas", gin.H{"documento": cnpjValido})
	if recorder.Code != http.StatusPaymentRequired {
		t.Fatalf("status = %d, esperado 402. Corpo: %s", recorder.Code, recorder.Body.String())
	}

	var atual model.Usuario
	database.DB.First(&atual, usuario.ID)
	if !atual.Saldo.Equal(decimal.RequireFromString("0.10")) {
		t.Errorf("saldo = %s, esperado 0.10 inalterado", atual.Saldo)
	}
	var n int64
	database.DB.Model(&model.Consulta{}).Where("dominio_origem = ?", "cons-b.com.br").Count(&n)
	if n != 0 {
		t.Errorf("%d consultas registradas, esperado nenhuma", n)
	}
}

func TestConsultarCNPJInvalido(t *testing.T) {
	testutil.ConnectTestDB(t)
	cfg := configDeTeste(t)
	usuario := criaUsuarioComDominio(t, "cons-c.com.br", "1.00")

	router := setupConsultaRouter(cfg, fonteDeDadosFalsa(t), usuario)

	for _, doc := range []string{"11111111111111", "123", ""} {
		recorder := postJSON(router, "/consultas", gin.H{"documento": doc})
		if recorder.Code != http.StatusBadRequest {
			t.Errorf("documento %q: status = %d, esperado 400", doc, recorder.Code)
		}
	}
}

func TestConsultarCNPJNaoEncontradoNaoCobra(t *testing.T) {
	testutil.ConnectTestDB(t)
	cfg := configDeTeste(t)
	usuario := criaUsuarioComDominio(t, "cons-d.com.br", "1.00")

	router := setupConsultaRouter(cfg, fonteDeDadosFalsa(t), usuario)

	// CNPJ válido pelo checksum, mas ausente na fonte de dados.
	recorder := postJSON(router, "/consultas", gin.H{"documento": "11444777000161"})
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("status = %d, esperado 404. Corpo: %s", recorder.Code, recorder.Body.String())
	}

	var atual model.Usuario
	database.DB.First(&atual, usuario.ID)
	if !atual.Saldo.Equal(decimal.RequireFromString("1.00")) {
		t.Errorf("consulta sem resultado foi cobrada: saldo = %s", atual.Saldo)
	}
}

func TestConsultarComTokenDeAPI(t *testing.T) {
	testutil.ConnectTestDB(t)
	cfg := configDeTeste(t)
	usuario := criaUsuarioComDominio(t, "cons-e.com.br", "1.00")

	token := model.ApiToken{
		Token:     "token-de-teste-0123456789abcdef0123456789abcdef0123456789abcdef",
		Descricao: "integração de teste",
		UsuarioID: &usuario.ID,
		Ativo:     true,
	}
	if err := database.DB.Create(&token).Error; err != nil {
		t.Fatal(err)
	}

	// Sem usuário de sessão: só o token autentica.
	router := setupConsultaRouter(cfg, fonteDeDadosFalsa(t), nil)

	payload, _ := json.Marshal(gin.H{"documento": cnpjValido})
	req := httptest.NewRequest(http.MethodPost, "/consultas", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(cabecalhoToken, token.Token)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d. Corpo: %s", recorder.Code, recorder.Body.String())
	}

	t.Run("token desativado é rejeitado", func(t *testing.T) {
		database.DB.Model(&token).Update("ativo", false)

		req := httptest.NewRequest(http.MethodPost, "/consultas", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(cabecalhoToken, token.Token)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)
		if recorder.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, esperado 401", recorder.Code)
		}
	})

	t.Run("token expirado é rejeitado", func(t *testing.T) {
		passado := time.Now().Add(-time.Hour)
		database.DB.Model(&token).Updates(map[string]any{"ativo": true, "expira_em": passado})

		req := httptest.NewRequest(http.MethodPost, "/consultas", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(cabecalhoToken, token.Token)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)
		if recorder.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, esperado 401", recorder.Code)
		}
	})
}

func TestConsultarSemAutenticacao(t *testing.T) {
	testutil.ConnectTestDB(t)
	cfg := configDeTeste(t)

	router := setupConsultaRouter(cfg, fonteDeDadosFalsa(t), nil)
	recorder := postJSON(router, "/consultas", gin.H{"documento": cnpjValido})
	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, esperado 401", recorder.Code)
	}
}
