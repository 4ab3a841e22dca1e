package fund

// AccountingUnit is a fund donations are allocated to, keyed by its name
type AccountingUnit struct {
	ID     string `db:"id" json:"id"`
	Name   string `db:"name" json:"name"`
	Active bool   `db:"active" json:"active"`
}
