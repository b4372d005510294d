package companies

// CompanyForm represents the form data for creating/updating a company.
// Balances are deliberately absent; they move only through the modal ledger.
type CompanyForm struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Address string `json:"address"`
}
