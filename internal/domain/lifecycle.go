package domain

func KnownTransportStatus(status string) bool {
	switch status {
	case TransportPending, TransportDispatched, TransportDelivered, TransportCancelled:
		return true
	}
	return false
}

// TransportTransitionAllowed encodes the transport state machine:
// pending -> dispatched -> delivered, and pending|dispatched -> cancelled.
// Nothing leaves delivered or cancelled, and no transition is reversible.
func TransportTransitionAllowed(from string, to string) bool {
	switch from {
	case TransportPending:
		return to == TransportDispatched || to == TransportCancelled
	case TransportDispatched:
		return to == TransportDelivered || to == TransportCancelled
	}
	return false
}

func KnownPaymentStatus(status string) bool {
	switch status {
	case PaymentStatusPending, PaymentStatusPartial, PaymentStatusPaid:
		return true
	}
	return false
}

// DerivePaymentStatus recomputes an order's payment status from its full
// payment history. Only payments marked paid count toward the total, so the
// result is a pure function of the current payment set.
func DerivePaymentStatus(totalCents int64, payments []Payment) string {
	paidSum := int64(0)
	for _, p := range payments {
		if p.Status == PaymentPaid {
			paidSum += p.AmountCents
		}
	}
	switch {
	case paidSum == 0:
		return PaymentStatusPending
	case paidSum >= totalCents:
		return PaymentStatusPaid
	default:
		return PaymentStatusPartial
	}
}
