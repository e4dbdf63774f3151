package classify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgerport/internal/diag"
)

func TestResolveModel_Unknown(t *testing.T) {
	_, err := ResolveModel("gaap", nil)
	var cfgErr *diag.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "model", cfgErr.Setting)
	assert.Contains(t, err.Error(), "gaap")
}

func TestResolveModel_CaseInsensitiveName(t *testing.T) {
	table, err := ResolveModel(" IFRS ", nil)
	require.NoError(t, err)
	assert.Equal(t, "Assets:Current", Classify("11", "", table))
}

func TestResolveModel_CustomizationPrecedence(t *testing.T) {
	table, err := ResolveModel(ModelPadrao, map[string]string{"1": "Assets:New", "119": "Assets:Caixa-Especial"})
	require.NoError(t, err)

	assert.Equal(t, "Assets:New", Classify("1", "", table))
	assert.Equal(t, "Assets:Ativo-Circulante", Classify("1101", "", table))
	assert.Equal(t, "Assets:Caixa-Especial", Classify("1190", "", table))
}

func TestResolveModel_CustomizationWithSeparators(t *testing.T) {
	table, err := ResolveModel(ModelPadrao, map[string]string{"1.1": "Assets:Circulante"})
	require.NoError(t, err)
	assert.Equal(t, "Assets:Circulante", Classify("1105", "", table))
}

func TestResolveModel_OnlyCustomizations(t *testing.T) {
	table, err := ResolveModel("", map[string]string{"11": "Assets:Caixa"})
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())
	assert.Equal(t, "Assets:Caixa", Classify("1101", "", table))
	// No base model: other codes drop to the leading-digit fallback.
	assert.Equal(t, "Liabilities", Classify("21", "", table))
	assert.Equal(t, "Unclassified", Classify("9", "", table))
}

func TestResolveModel_BuiltinsAreImmutable(t *testing.T) {
	_, err := ResolveModel(ModelPadrao, map[string]string{"1": "Assets:Changed"})
	require.NoError(t, err)

	table, err := ResolveModel(ModelPadrao, nil)
	require.NoError(t, err)
	assert.Equal(t, "Assets:Ativo", Classify("1", "", table))
}

func TestValidateCustomizations(t *testing.T) {
	tests := []struct {
		name   string
		custom map[string]string
		ok     bool
	}{
		{"valid", map[string]string{"1": "Assets:Caixa"}, true},
		{"empty prefix", map[string]string{" . ": "Assets"}, false},
		{"empty group", map[string]string{"1": ""}, false},
		{"unknown root", map[string]string{"1": "Ativo:Caixa"}, false},
		{"blank segment", map[string]string{"1": "Assets::Caixa"}, false},
		{"space in segment", map[string]string{"1": "Assets:Ativo Circulante"}, false},
	}
	for _, tt := range tests {
		err := ValidateCustomizations(tt.custom)
		if tt.ok {
			assert.NoError(t, err, tt.name)
			continue
		}
		var cfgErr *diag.ConfigurationError
		assert.ErrorAs(t, err, &cfgErr, tt.name)
	}
}

func TestModels(t *testing.T) {
	assert.Equal(t, []string{"ifrs", "padrao", "simplificado"}, Models())
}

func TestLoadINI(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plano.ini")
	content := "[database]\ndsn = x\n\n[classification]\nclas_1 = Assets:Custom\nclas_21 = Liabilities:Fornecedores\nclas_cta = ignored\nother = skip\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	got, err := LoadCustomizations(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"1": "Assets:Custom", "21": "Liabilities:Fornecedores"}, got)
}

func TestLoadINI_NoSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.ini")
	require.NoError(t, os.WriteFile(path, []byte("[other]\na = b\n"), 0o644))

	got, err := LoadINI(path)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLoadCustomizations_JSONAndYAML(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "c.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"1": "Assets:Custom"}`), 0o644))
	yamlPath := filepath.Join(dir, "c.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("\"4\": Income:Vendas\n"), 0o644))

	got, err := LoadCustomizations(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"1": "Assets:Custom"}, got)

	got, err = LoadCustomizations(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"4": "Income:Vendas"}, got)
}

func TestLoadCustomizations_Malformed(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "c.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"1": [1,2]}`), 0o644))

	var cfgErr *diag.ConfigurationError
	_, err := LoadCustomizations(bad)
	assert.ErrorAs(t, err, &cfgErr)

	_, err = LoadCustomizations(filepath.Join(dir, "c.txt"))
	assert.ErrorAs(t, err, &cfgErr)
}

func TestFromKeys(t *testing.T) {
	assert.Nil(t, FromKeys(map[string]string{"model": "padrao"}))
	assert.Equal(t,
		map[string]string{"11": "Assets:Caixa"},
		FromKeys(map[string]string{"CLAS_11": " Assets:Caixa ", "clas_cta": "x"}),
	)
}
