package domain

// Identity describes the acting principal for a request. Authentication itself
// happens outside this service; we only consume the verified claims.
type Identity struct {
	UserID  string
	IsAdmin bool
}

// CanAccessJobOwnedBy reports whether the identity may act on a job owned by ownerID.
func (i Identity) CanAccessJobOwnedBy(ownerID string) bool {
	return i.IsAdmin || i.UserID == ownerID
}

// Matchable field names. These are part of the persisted contract and must not change.
const (
	FieldTransactionID   = "transactionId"
	FieldReferenceNumber = "referenceNumber"
	FieldAmount          = "amount"
	FieldDate            = "date"
)

// AllowedMatchFields lists every field a matching configuration may reference,
// in canonical order.
var AllowedMatchFields = []string{FieldTransactionID, FieldReferenceNumber, FieldAmount, FieldDate}

// IsAllowedMatchField reports whether field is one of the four matchable fields.
func IsAllowedMatchField(field string) bool {
	for _, allowed := range AllowedMatchFields {
		if field == allowed {
			return true
		}
	}
	return false
}
