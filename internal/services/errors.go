package services

import "errors"

var (
	// ErrInvalidInput indicates a request that fails validation before any
	// state is touched.
	ErrInvalidInput = errors.New("services: invalid input")

	// ErrProductNotFound indicates the referenced catalogue entry is missing.
	ErrProductNotFound = errors.New("services: product not found")
	// ErrBarcodeConflict indicates another product already owns the barcode.
	ErrBarcodeConflict = errors.New("services: barcode already in use")

	// ErrCustomerNotFound indicates the referenced customer is missing.
	ErrCustomerNotFound = errors.New("services: customer not found")

	// ErrOrderNotFound indicates the referenced order is missing.
	ErrOrderNotFound = errors.New("services: order not found")
	// ErrEmptyCart indicates a checkout with no lines.
	ErrEmptyCart = errors.New("services: cart is empty")
	// ErrInvalidTransition indicates a disallowed order status change.
	ErrInvalidTransition = errors.New("services: invalid status transition")
	// ErrPaymentFailed indicates the card charge was declined or errored.
	ErrPaymentFailed = errors.New("services: payment failed")
	// ErrNotCashOnDelivery indicates a payment or delivery status change on
	// an order that is not COD.
	ErrNotCashOnDelivery = errors.New("services: order is not cash on delivery")

	// ErrReturnQuantityExceeded indicates a return quantity above what the
	// order line sold.
	ErrReturnQuantityExceeded = errors.New("services: return quantity exceeds ordered quantity")
	// ErrReturnItemMismatch indicates a returned product that is not on the
	// order.
	ErrReturnItemMismatch = errors.New("services: returned item not on order")
	// ErrReturnAlreadyProcessed indicates the order was already fully
	// returned.
	ErrReturnAlreadyProcessed = errors.New("services: order already returned")
	// ErrReturnAmountMismatch indicates the aggregate refund does not equal
	// the sum of the item refunds.
	ErrReturnAmountMismatch = errors.New("services: refund amount does not match items")
	// ErrReturnInconsistent indicates the return ledger may hold partial
	// state after a mid-flight failure on a non-transactional backend.
	ErrReturnInconsistent = errors.New("services: return left inconsistent state")

	// ErrSettingsUnavailable indicates the settings document could not be
	// read or seeded.
	ErrSettingsUnavailable = errors.New("services: settings unavailable")
)
