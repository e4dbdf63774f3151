package classify

// Built-in model names.
const (
	ModelPadrao       = "padrao"
	ModelSimplificado = "simplificado"
	ModelIFRS         = "ifrs"
)

// DefaultModel is used when configuration names none.
const DefaultModel = ModelPadrao

// Full Brazilian standard chart.
var padrao = map[string]string{
	"1":  "Assets:Ativo",
	"11": "Assets:Ativo-Circulante",
	"12": "Assets:Ativo-Nao-Circulante",
	"2":  "Liabilities:Passivo",
	"21": "Liabilities:Passivo-Circulante",
	"22": "Liabilities:Passivo-Nao-Circulante",
	"23": "Equity:Patrimonio-Liquido",
	"3":  "Expenses:Custos-Despesas",
	"31": "Expenses:Custos",
	"32": "Expenses:Despesas-Operacionais",
	"33": "Expenses:Despesas-Financeiras",
	"34": "Expenses:Outras-Despesas",
	"4":  "Income:Receitas",
	"41": "Income:Receitas-Operacionais",
	"42": "Income:Receitas-Financeiras",
	"43": "Income:Outras-Receitas",
	"5":  "Equity:Contas-Transitorias",
	"9":  "Equity:Contas-Compensacao",
}

// Simplified chart: results live under 9x.
var simplificado = map[string]string{
	"1":  "Assets:Ativo",
	"11": "Assets:Ativo-Circulante",
	"12": "Assets:Ativo-Nao-Circulante",
	"2":  "Liabilities",
	"21": "Liabilities:Passivo-Circulante",
	"22": "Liabilities:Passivo-Nao-Circulante",
	"23": "Equity:Patrimonio-Liquido",
	"9":  "Income:Receitas",
	"91": "Income:Receitas-Operacionais",
	"92": "Income:Abatimentos-Receitas",
	"93": "Expenses:Custos-dos-Bens-e-Servicos-Vendidos",
	"94": "Expenses:Despesas-Operacionais",
	"95": "Expenses:Resultado-Nao-Operacional",
	"96": "Expenses:Provisao-Imposto-de-Renda",
	"97": "Expenses:Provisao-Contribuicao-Social",
	"98": "Expenses:Provisao-Outras",
	"99": "Expenses:Apuracao-Resultado",
}

var ifrs = map[string]string{
	"1":   "Assets",
	"11":  "Assets:Current",
	"111": "Assets:Current:CashAndCashEquivalents",
	"112": "Assets:Current:AccountsReceivable",
	"113": "Assets:Current:Inventories",
	"114": "Assets:Current:OtherCurrentAssets",
	"12":  "Assets:Non-Current",
	"121": "Assets:Non-Current:PropertyPlantAndEquipment",
	"122": "Assets:Non-Current:IntangibleAssets",
	"123": "Assets:Non-Current:Investments",
	"124": "Assets:Non-Current:DeferredTaxAssets",
	"2":   "Liabilities",
	"21":  "Liabilities:Current",
	"211": "Liabilities:Current:Suppliers",
	"212": "Liabilities:Current:LoansAndFinancing",
	"213": "Liabilities:Current:TaxesPayable",
	"214": "Liabilities:Current:Provisions",
	"22":  "Liabilities:Non-Current",
	"221": "Liabilities:Non-Current:LoansAndFinancing",
	"222": "Liabilities:Non-Current:Provisions",
	"223": "Liabilities:Non-Current:DeferredTaxLiabilities",
	"3":   "Equity",
	"31":  "Equity:CapitalStock",
	"32":  "Equity:Reserves",
	"33":  "Equity:RetainedEarnings",
	"4":   "Income",
	"41":  "Income:SalesRevenue",
	"42":  "Income:OtherOperatingIncome",
	"43":  "Income:FinancialIncome",
	"5":   "Expenses",
	"51":  "Expenses:CostOfGoodsSold",
	"52":  "Expenses:OperatingExpenses",
	"53":  "Expenses:AdministrativeExpenses",
	"54":  "Expenses:FinancialExpenses",
	"55":  "Expenses:TaxesAndContributions",
}

var builtins = map[string]map[string]string{
	ModelPadrao:       padrao,
	ModelSimplificado: simplificado,
	ModelIFRS:         ifrs,
}
