// /internal/billing/billing.go
// Núcleo de cobrança: registro de depósitos pendentes, confirmação via
// callback externo (credita o saldo) e débito condicional por consulta.
// Toda garantia de concorrência vem do banco: o débito é um único UPDATE
// condicional, sem mutex em aplicação.
package billing

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gabrielmsouza/painel-consultas/internal/database"
	"github.com/gabrielmsouza/painel-consultas/internal/model"
)

var (
	// ErrSaldoInsuficiente é a falha de regra de negócio do débito,
	// distinta de falhas de sistema.
	ErrSaldoInsuficiente = errors.New("saldo insuficiente para a consulta")
	// ErrDominioNaoEncontrado indica que nenhum usuário possui o domínio.
	ErrDominioNaoEncontrado = errors.New("domínio não cadastrado")
	// ErrPagamentoNaoEncontrado indica código de transação desconhecido.
	ErrPagamentoNaoEncontrado = errors.New("pagamento não encontrado")
	// ErrTransicaoInvalida indica tentativa de sair de um status terminal.
	ErrTransicaoInvalida = errors.New("transição de status inválida")
)

// RegistrarPendente insere o Pagamento com status "pendente" dentro de uma
// transação. Se a escrita falhar, nada fica para trás. Deve ser chamado
// somente depois que o gateway aceitou o depósito.
func RegistrarPendente(usuarioID uint, valor decimal.Decimal, codigoTransacao, referenciaExterna string) (*model.Pagamento, error) {
	pagamento := model.Pagamento{
		UsuarioID:         usuarioID,
		Valor:             valor,
		Status:            model.StatusPendente,
		CodigoTransacao:   codigoTransacao,
		ReferenciaExterna: referenciaExterna,
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&pagamento).Error
	})
	if err != nil {
		return nil, err
	}
	return &pagamento, nil
}

// ConsultarStatus devolve o status atual do pagamento. Leitura pura: chamadas
// repetidas sem atualização externa devolvem sempre o mesmo valor.
func ConsultarStatus(codigoTransacao string) (model.StatusPagamento, error) {
	var pagamento model.Pagamento
	err := database.DB.Where("codigo_transacao = ?", codigoTransacao).First(&pagamento).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrPagamentoNaoEncontrado
		}
		return "", err
	}
	return pagamento.Status, nil
}

// ConfirmarPagamento transita o pagamento de "pendente" para "pago" e
// credita o valor no saldo do dono, tudo na mesma transação. Status
// terminais são rejeitados: "pago" e "cancelado" nunca mudam.
func ConfirmarPagamento(codigoTransacao string) (*model.Pagamento, error) {
	var pagamento model.Pagamento

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("codigo_transacao = ?", codigoTransacao).First(&pagamento).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPagamentoNaoEncontrado
			}
			return err
		}

		// UPDATE condicional: só transita se ainda estiver pendente. Duas
		// confirmações simultâneas resultam em um único crédito.
		resultado := tx.Model(&model.Pagamento{}).
			Where("codigo_transacao = ? AND status = ?", codigoTransacao, model.StatusPendente).
			Update("status", model.StatusPago)
		if resultado.Error != nil {
			return resultado.Error
		}
		if resultado.RowsAffected == 0 {
			return ErrTransicaoInvalida
		}

		credito := tx.Model(&model.Usuario{}).
			Where("id = ?", pagamento.UsuarioID).
			Update("saldo", gorm.Expr("saldo + ?", pagamento.Valor))
		if credito.Error != nil {
			return credito.Error
		}
		if credito.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		pagamento.Status = model.StatusPago
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &pagamento, nil
}

// CancelarPagamento transita o pagamento de "pendente" para "cancelado".
// Mesmas regras de terminalidade de ConfirmarPagamento; não mexe no saldo.
func CancelarPagamento(codigoTransacao string) error {
	return database.DB.Transaction(func(tx *gorm.DB) error {
		var pagamento model.Pagamento
		if err := tx.Where("codigo_transacao = ?", codigoTransacao).First(&pagamento).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPagamentoNaoEncontrado
			}
			return err
		}

		resultado := tx.Model(&model.Pagamento{}).
			Where("codigo_transacao = ? AND status = ?", codigoTransacao, model.StatusPendente).
			Update("status", model.StatusCancelado)
		if resultado.Error != nil {
			return resultado.Error
		}
		if resultado.RowsAffected == 0 {
			return ErrTransicaoInvalida
		}
		return nil
	})
}

// CobrarConsulta debita o custo do usuário dono do domínio e grava o log da
// consulta, na mesma transação. O decremento condicional vem primeiro: o log
// só é inserido se o banco confirmou o débito, então nunca existe linha de
// consulta sem o saldo correspondente descontado.
func CobrarConsulta(dominio, documento string, custo decimal.Decimal) (*model.Consulta, error) {
	var consulta model.Consulta

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		debito := tx.Model(&model.Usuario{}).
			Where("dominio = ? AND saldo >= ?", dominio, custo).
			Update("saldo", gorm.Expr("saldo - ?", custo))
		if debito.Error != nil {
			return debito.Error
		}
		if debito.RowsAffected == 0 {
			// Distingue domínio inexistente de saldo insuficiente.
			var n int64
			if err := tx.Model(&model.Usuario{}).Where("dominio = ?", dominio).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return ErrDominioNaoEncontrado
			}
			return ErrSaldoInsuficiente
		}

		consulta = model.Consulta{
			Documento:     documento,
			DominioOrigem: dominio,
			Custo:         custo,
		}
		return tx.Create(&consulta).Error
	})
	if err != nil {
		return nil, err
	}
	return &consulta, nil
}

// SaldoPorDominio devolve o saldo atual do usuário dono do domínio.
func SaldoPorDominio(dominio string) (decimal.Decimal, error) {
	var usuario model.Usuario
	err := database.DB.Where("dominio = ?", dominio).First(&usuario).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, ErrDominioNaoEncontrado
		}
		return decimal.Zero, err
	}
	return usuario.Saldo, nil
}
