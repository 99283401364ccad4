package statements

import (
	"github.com/quillbooks/quillbooks/internal/ledger"
)

// BuildItems partitions accounts into statement line items by account type.
// Balance sheets carry Asset, Liability, and Equity accounts; income
// statements carry Revenue and Expense accounts. Accounts of any other type,
// and statement types outside the two known values, are skipped silently.
// Amounts are the accounts' current balances at build time.
func BuildItems(statementType string, accounts []ledger.Account) []FinancialStatementItem {
	var items []FinancialStatementItem
	for _, account := range accounts {
		if !includeAccount(statementType, account.Type) {
			continue
		}
		items = append(items, FinancialStatementItem{
			AccountID: account.ID,
			Amount:    account.Balance,
		})
	}
	return items
}

func includeAccount(statementType string, accountType ledger.AccountType) bool {
	switch statementType {
	case TypeBalanceSheet:
		return accountType == ledger.AccountTypeAsset ||
			accountType == ledger.AccountTypeLiability ||
			accountType == ledger.AccountTypeEquity
	case TypeIncomeStatement:
		return accountType == ledger.AccountTypeRevenue ||
			accountType == ledger.AccountTypeExpense
	default:
		return false
	}
}
