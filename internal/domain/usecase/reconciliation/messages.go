package reconciliation

import "github.com/amirhossein-jamali/payment-reconciler/internal/domain/entity"

// StatusMessage returns the customer-facing text for an attempt status.
// Anything undecided reads as waiting, never as failed.
func StatusMessage(status entity.AttemptStatus) string {
	switch status {
	case entity.StatusSuccess:
		return "Payment completed successfully! Your order is confirmed."
	case entity.StatusFailed:
		return "Payment failed. Please try again or contact support."
	case entity.StatusCancelled:
		return "Payment was cancelled. You can try again."
	default:
		return "Waiting for payment confirmation. Please check your phone."
	}
}
