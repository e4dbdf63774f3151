package accounts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Caixa", "Caixa"},
		{"  caixa   geral ", "Caixa-Geral"},
		{"BANCO DO BRASIL S/A", "Banco-Do-Brasil-S-A"},
		{"(-) Depreciação Acumulada", "Depreciacao-Acumulada"},
		{"( - ) Provisão p/ Devedores", "Provisao-P-Devedores"},
		{"Receitas (Vendas)", "Receitas-Vendas"},
		{"Lei 10.833 Retenções", "Lei-10833-Retencoes"},
		{"Adiant. a Fornecedores", "Adiant-A-Fornecedores"},
		{"ICMS_a_Recuperar", "Icms-A-Recuperar"},
		{"Conta: Especial", "Conta-Especial"},
		{"Lucros -- Acumulados", "Lucros-Acumulados"},
		{"", EmptyName},
		{"(-)", EmptyName},
		{"***", EmptyName},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeName(tt.in, false), "NormalizeName(%q)", tt.in)
	}
}

func TestNormalizeName_PreserveCase(t *testing.T) {
	assert.Equal(t, "ICMS-a-Recuperar", NormalizeName("ICMS a Recuperar", true))
	assert.Equal(t, "CashAndEquivalents", NormalizeName("CashAndEquivalents", true))
}

func TestSanitizeSegment(t *testing.T) {
	assert.Equal(t, "Ativo-Circulante", sanitizeSegment("Ativo-Circulante"))
	assert.Equal(t, "Nao-Circulante", sanitizeSegment(" Não Circulante "))
	assert.Equal(t, "", sanitizeSegment("--"))
}
