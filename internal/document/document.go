// /internal/document/document.go
// Validação de CPF e CNPJ pelo algoritmo padrão de dígitos verificadores
// (módulo 11 ponderado em duas passagens).
package document

// pesos da segunda passagem do CNPJ; a primeira usa pesos[1:].
var pesosCNPJ = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}

// SomenteDigitos remove tudo que não for dígito.
func SomenteDigitos(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			out = append(out, s[i])
		}
	}
	return string(out)
}

// todosIguais detecta sequências como "11111111111", que passam no cálculo
// dos dígitos mas são inválidas por definição.
func todosIguais(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}

// ValidarCPF verifica se s é um CPF válido: exatamente 11 dígitos, não todos
// iguais, com os dois dígitos verificadores corretos.
func ValidarCPF(s string) bool {
	s = SomenteDigitos(s)
	if len(s) != 11 || todosIguais(s) {
		return false
	}

	// Primeiro dígito: pesos 10..2 sobre os 9 primeiros dígitos.
	soma := 0
	for i := 0; i < 9; i++ {
		soma += int(s[i]-'0') * (10 - i)
	}
	d1 := (soma * 10) % 11
	if d1 == 10 {
		d1 = 0
	}
	if d1 != int(s[9]-'0') {
		return false
	}

	// Segundo dígito: pesos 11..2 sobre os 10 primeiros.
	soma = 0
	for i := 0; i < 10; i++ {
		soma += int(s[i]-'0') * (11 - i)
	}
	d2 := (soma * 10) % 11
	if d2 == 10 {
		d2 = 0
	}
	return d2 == int(s[10]-'0')
}

// ValidarCNPJ verifica se s é um CNPJ válido: exatamente 14 dígitos, não
// todos iguais, com os dois dígitos verificadores corretos.
func ValidarCNPJ(s string) bool {
	s = SomenteDigitos(s)
	if len(s) != 14 || todosIguais(s) {
		return false
	}

	soma := 0
	for i := 0; i < 12; i++ {
		soma += int(s[i]-'0') * pesosCNPJ[i+1]
	}
	d1 := soma % 11
	if d1 < 2 {
		d1 = 0
	} else {
		d1 = 11 - d1
	}
	if d1 != int(s[12]-'0') {
		return false
	}

	soma = 0
	for i := 0; i < 13; i++ {
		soma += int(s[i]-'0') * pesosCNPJ[i]
	}
	d2 := soma % 11
	if d2 < 2 {
		d2 = 0
	} else {
		d2 = 11 - d2
	}
	return d2 == int(s[13]-'0')
}
