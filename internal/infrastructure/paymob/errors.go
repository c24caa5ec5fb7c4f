package paymob

import "fmt"

// Each orchestration step has its own failure type so callers can tell an
// auth outage apart from a rejected order or a failed key generation.

type AuthError struct {
	Err error
}

func (e *AuthError) Error() string { return fmt.Sprintf("processor auth: %v", e.Err) }
func (e *AuthError) Unwrap() error { return e.Err }

type OrderCreationError struct {
	Err error
}

func (e *OrderCreationError) Error() string { return fmt.Sprintf("processor order creation: %v", e.Err) }
func (e *OrderCreationError) Unwrap() error { return e.Err }

type PaymentKeyError struct {
	Err error
}

func (e *PaymentKeyError) Error() string { return fmt.Sprintf("processor payment key: %v", e.Err) }
func (e *PaymentKeyError) Unwrap() error { return e.Err }
