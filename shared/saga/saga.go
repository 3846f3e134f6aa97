package saga

// Step tags the saga phase a log line or notification belongs to.
type Step string

const (
	StepPayment    Step = "PAYMENT"
	StepStockCheck Step = "STOCK_CHECK"
	StepShipping   Step = "SHIPPING"
	StepReceiving  Step = "RECEIVING"
	StepCompleted  Step = "COMPLETED"
	StepFailed     Step = "FAILED"
)

func (s Step) String() string {
	return string(s)
}
