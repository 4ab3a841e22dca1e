package donor

import (
	"strings"
	"time"

	"github.com/flexprice/donorsync/internal/types"
)

// Donor is a CRM contact that gives money
type Donor struct {
	ID          string           `db:"id" json:"id"`
	OwnerID     string           `db:"owner_id" json:"owner_id"`
	Email       string           `db:"email" json:"email"`
	FirstName   string           `db:"first_name" json:"first_name"`
	LastName    string           `db:"last_name" json:"last_name"`
	MobilePhone string           `db:"mobile_phone" json:"mobile_phone"`
	LeadSource  types.LeadSource `db:"lead_source" json:"lead_source"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
}

// SplitFullName splits on whitespace: the first token is the first name and
// the remaining tokens, single-space joined, the last name. A single token is
// used for both.
func SplitFullName(fullName string) (first, last string) {
	tokens := strings.Fields(fullName)
	switch len(tokens) {
	case 0:
		return "", ""
	case 1:
		return tokens[0], tokens[0]
	default:
		return tokens[0], strings.Join(tokens[1:], " ")
	}
}

// NameTokens splits fullName for matching against existing donors. Unlike
// SplitFullName a single token leaves the last name empty.
func NameTokens(fullName string) (first, last string) {
	tokens := strings.Fields(fullName)
	if len(tokens) == 0 {
		return "", ""
	}
	return tokens[0], strings.Join(tokens[1:], " ")
}

// NormalizePhone strips hyphens so "050-123-4567" and "0501234567" compare equal
func NormalizePhone(phone string) string {
	return strings.ReplaceAll(strings.TrimSpace(phone), "-", "")
}

// PhoneMatches reports whether the donor's mobile equals phone once both are
// normalized. Empty phones never match.
func (d *Donor) PhoneMatches(phone string) bool {
	want := NormalizePhone(phone)
	return want != "" && NormalizePhone(d.MobilePhone) == want
}

// NameMatches reports whether both first and last name equal the given ones
func (d *Donor) NameMatches(first, last string) bool {
	return d.FirstName == first && d.LastName == last
}
