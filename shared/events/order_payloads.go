package events

import "encoding/json"

// Wire payloads for the order saga, one struct per topic. These are the
// cross-service contracts: the inventory, payment and receiving workers
// consume the request payloads and reply with the matching result payloads.

// PayRequestData asks the payment worker to charge an order.
type PayRequestData struct {
	OrderID     int64  `json:"order_id"`
	OrderNumber string `json:"order_number"`
	PaymentType string `json:"payment_type"`
	TotalPrice  int64  `json:"total_price"`
}

// PayResultData is the payment worker reply, published on either
// order.payment.completed or order.payment.failed.
type PayResultData struct {
	OrderID     int64  `json:"order_id"`
	OrderNumber string `json:"order_number"`
	AttemptID   string `json:"attempt_id,omitempty"`
	Success     bool   `json:"success"`
	Message     string `json:"message,omitempty"`
}

// StockItem is one line of a stock operation.
type StockItem struct {
	PartID int64 `json:"part_id"`
	Amount int64 `json:"amount"`
}

// StockDeductionRequestData asks inventory to reserve stock for an approval
// attempt. AttemptID correlates the asynchronous reply with this attempt.
type StockDeductionRequestData struct {
	OrderID     int64       `json:"order_id"`
	OrderNumber string      `json:"order_number"`
	AttemptID   string      `json:"attempt_id"`
	Items       []StockItem `json:"items"`
}

type StockDeductionSucceededData struct {
	OrderID     int64  `json:"order_id"`
	OrderNumber string `json:"order_number"`
}

type StockDeductionFailedData struct {
	OrderID     int64           `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	AttemptID   string          `json:"attempt_id"`
	Reason      string          `json:"reason"`
	Data        json.RawMessage `json:"data,omitempty"`
}

// StockRestoreRequestData is the compensation for a partially reserved
// deduction. Fire-and-forget, no reply topic exists.
type StockRestoreRequestData struct {
	OrderID     int64       `json:"order_id"`
	OrderNumber string      `json:"order_number"`
	Items       []StockItem `json:"items"`
	Reason      string      `json:"reason"`
}

// ReceivingRequestData asks the receiving worker to register an inbound
// delivery for the member.
type ReceivingRequestData struct {
	OrderID     int64       `json:"order_id"`
	OrderNumber string      `json:"order_number"`
	AttemptID   string      `json:"attempt_id"`
	MemberID    int64       `json:"member_id"`
	Items       []StockItem `json:"items"`
}

type ReceivingCompletedData struct {
	OrderID     int64  `json:"order_id"`
	OrderNumber string `json:"order_number"`
	AttemptID   string `json:"attempt_id"`
	Message     string `json:"message,omitempty"`
}

type ReceivingFailedData struct {
	OrderID      int64  `json:"order_id"`
	OrderNumber  string `json:"order_number"`
	ErrorMessage string `json:"error_message"`
}

type CancelFailedData struct {
	OrderID     int64  `json:"order_id"`
	OrderNumber string `json:"order_number"`
	Reason      string `json:"reason"`
}

// NotificationData is a notification intent pushed to the notification
// service. Delivery is best effort and never blocks a transition.
type NotificationData struct {
	Category    string `json:"category"`
	OrderID     int64  `json:"order_id"`
	OrderNumber string `json:"order_number"`
	Message     string `json:"message"`
	Step        string `json:"step"`
}
