// /internal/qrcode/qrcode.go
// Renderiza o código "copia e cola" do PIX como PNG e persiste a imagem em
// disco, nomeada pelo código de transação.
package qrcode

import (
	"fmt"
	"os"
	"path/filepath"

	qr "github.com/skip2/go-qrcode"
)

// Gerar codifica o texto do PIX em um PNG de 256x256. Função pura: mesmo
// texto, mesmos bytes.
func Gerar(pixCopiaECola string) ([]byte, error) {
	png, err := qr.Encode(pixCopiaECola, qr.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("erro ao gerar QR code: %w", err)
	}
	return png, nil
}

// Salvar grava o PNG em {dir}/{codigoTransacao}.png, criando o diretório se
// necessário. Regrava por cima se já existir.
func Salvar(dir, codigoTransacao string, png []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("erro ao criar diretório de QR codes: %w", err)
	}
	caminho := filepath.Join(dir, codigoTransacao+".png")
	if err := os.WriteFile(caminho, png, 0o644); err != nil {
		return "", fmt.Errorf("erro ao salvar QR code: %w", err)
	}
	return caminho, nil
}
