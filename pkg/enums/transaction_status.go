package enums

import "fmt"

// TransactionStatus tracks a deal through coordinator review.
type TransactionStatus string

const (
	TransactionStatusInQueue  TransactionStatus = "in_queue"
	TransactionStatusInReview TransactionStatus = "in_review"
	TransactionStatusApproved TransactionStatus = "approved"
	TransactionStatusRejected TransactionStatus = "rejected"
	TransactionStatusClosed   TransactionStatus = "closed"
)

var validTransactionStatuses = []TransactionStatus{
	TransactionStatusInQueue,
	TransactionStatusInReview,
	TransactionStatusApproved,
	TransactionStatusRejected,
	TransactionStatusClosed,
}

// IsValid reports whether the value is a known TransactionStatus.
func (s TransactionStatus) IsValid() bool {
	for _, candidate := range validTransactionStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseTransactionStatus converts raw input into a TransactionStatus.
func ParseTransactionStatus(value string) (TransactionStatus, error) {
	for _, candidate := range validTransactionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transaction status %q", value)
}
