package marketplace

// PayPalTokenResponse is the OAuth2 client-credentials token response
type PayPalTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// PayPalMoney is PayPal's money representation
type PayPalMoney struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

// PayPalTransactionInfo is the transaction block of one search result
type PayPalTransactionInfo struct {
	TransactionID             string       `json:"transaction_id"`
	TransactionEventCode      string       `json:"transaction_event_code"`
	TransactionInitiationDate string       `json:"transaction_initiation_date"`
	TransactionUpdatedDate    string       `json:"transaction_updated_date"`
	TransactionAmount         *PayPalMoney `json:"transaction_amount"`
	FeeAmount                 *PayPalMoney `json:"fee_amount"`
	TransactionStatus         string       `json:"transaction_status"`
	TransactionSubject        string       `json:"transaction_subject"`
	InvoiceID                 string       `json:"invoice_id"`
}

// PayPalPayerInfo identifies the counterparty
type PayPalPayerInfo struct {
	EmailAddress string `json:"email_address"`
	PayerName    *struct {
		AlternateFullName string `json:"alternate_full_name"`
	} `json:"payer_name"`
}

// PayPalTransactionDetail is one entry of the transaction search
type PayPalTransactionDetail struct {
	TransactionInfo PayPalTransactionInfo `json:"transaction_info"`
	PayerInfo       *PayPalPayerInfo      `json:"payer_info"`
}

// PayPalTransactionSearchResponse is the transaction search envelope
type PayPalTransactionSearchResponse struct {
	TransactionDetails []PayPalTransactionDetail `json:"transaction_details"`
	TotalPages         int                       `json:"total_pages"`
	Page               int                       `json:"page"`
}
