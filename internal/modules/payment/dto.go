package payment

type InitializePaymentRequest struct {
	BookingID int64  `json:"booking_id" binding:"required"`
	Method    string `json:"method" binding:"required"`
	Phone     string `json:"phone"`
}

// BankDetails are the manual transfer instructions returned for
// bank_transfer payments.
type BankDetails struct {
	BankName      string `json:"bank_name"`
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
	Reference     string `json:"reference"`
}

type InitializeResult struct {
	Reference        string       `json:"reference"`
	Status           string       `json:"status"`
	AuthorizationURL string       `json:"authorization_url,omitempty"`
	DisplayText      string       `json:"display_text,omitempty"`
	BankDetails      *BankDetails `json:"bank_details,omitempty"`
}

type webhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		ID              int64  `json:"id"`
		Reference       string `json:"reference"`
		Amount          int64  `json:"amount"`
		Status          string `json:"status"`
		GatewayResponse string `json:"gateway_response"`
	} `json:"data"`
}
