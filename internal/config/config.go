// /internal/config/config.go
// Carrega e expõe as variáveis de configuração do serviço a partir do
// ambiente, com defaults seguros para desenvolvimento.
package config

import (
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
)

// Config reúne tudo que o serviço precisa do ambiente.
type Config struct {
	DeploymentEnv string // "development" | "production"
	Port          string

	DatabaseURL   string
	SessionSecret string

	// Gateway PIX
	GatewayBaseURL      string
	GatewayClientID     string
	GatewayClientSecret string
	GatewayCallbackURL  string
	WebhookSecret       string

	// Diretório onde os PNGs de QR code são gravados.
	QRCodeDir string

	DepositoMinimo decimal.Decimal
	CustoConsulta  decimal.Decimal

	// Fonte de dados do registro de CNPJ.
	RegistryBaseURL string
}

// getenv retorna o valor de uma variável de ambiente, ou o default se não definido.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getenvDecimal retorna uma variável de ambiente como decimal, ou o default
// se ausente ou inválida.
func getenvDecimal(key, def string) decimal.Decimal {
	if v := os.Getenv(key); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			return d
		}
	}
	d, _ := decimal.NewFromString(def)
	return d
}

// Dev informa se o serviço está em modo de desenvolvimento. Em dev as
// respostas de erro incluem o detalhe bruto para depuração.
func (c *Config) Dev() bool {
	return c.DeploymentEnv != "production"
}

// Load carrega a configuração a partir do ambiente.
func Load() *Config {
	return &Config{
		DeploymentEnv: getenv("DEPLOYMENT_ENVIRONMENT", "development"),
		Port:          getenv("PORT", "8080"),

		DatabaseURL:   getenv("DATABASE_URL", ""),
		SessionSecret: getenv("SESSION_SECRET", "change-me"),

		GatewayBaseURL:      getenv("GATEWAY_BASE_URL", ""),
		GatewayClientID:     getenv("GATEWAY_CLIENT_ID", ""),
		GatewayClientSecret: getenv("GATEWAY_CLIENT_SECRET", ""),
		GatewayCallbackURL:  getenv("GATEWAY_CALLBACK_URL", ""),
		WebhookSecret:       getenv("WEBHOOK_SECRET", ""),

		QRCodeDir: getenv("QRCODE_DIR", filepath.Join(os.TempDir(), "qrcodes")),

		DepositoMinimo: getenvDecimal("DEPOSITO_MINIMO", "400.00"),
		CustoConsulta:  getenvDecimal("CUSTO_CONSULTA", "0.12"),

		RegistryBaseURL: getenv("REGISTRY_BASE_URL", ""),
	}
}
