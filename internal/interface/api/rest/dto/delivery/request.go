package delivery

type ActionRequest struct {
	Action         string   `json:"action"`
	DeliveryID     *string  `json:"deliveryId"`
	ShareID        *string  `json:"shareId"`
	RecipientEmail string   `json:"recipientEmail"`
	Channels       []string `json:"channels"`
}
