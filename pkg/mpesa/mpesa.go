// Package mpesa talks to the Safaricom Daraja API: it fetches OAuth tokens and
// submits Lipa na M-Pesa Online (STK push) requests.
package mpesa

import (
	"encoding/json"

	jsoniter "github.com/json-iterator/go"
)

// DefaultBaseURL is the Daraja sandbox.
const DefaultBaseURL = "https://sandbox.safaricom.co.ke"

const (
	tokenPath = "/oauth/v1/generate?grant_type=client_credentials"
	stkPath   = "/mpesa/stkpush/v1/processrequest"
)

// Fixed values sent with every STK push.
const (
	TransactionType  = "CustomerPayBillOnline"
	AccountReference = "EntertainmentStore"
	TransactionDesc  = "Order Payment"
)

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

// Credentials are the merchant's Daraja app keys and STK settings.
type Credentials struct {
	ConsumerKey    string
	ConsumerSecret string
	Shortcode      string
	Passkey        string
	CallbackURL    string
}

// Validate reports the first empty field needed to talk to Daraja.
func (c Credentials) Validate() error {
	fields := []struct {
		name, value string
	}{
		{"consumer key", c.ConsumerKey},
		{"consumer secret", c.ConsumerSecret},
		{"shortcode", c.Shortcode},
		{"passkey", c.Passkey},
	}
	for _, f := range fields {
		if f.value == "" {
			return &Error{Kind: KindConfiguration, Body: f.name + " is empty"}
		}
	}
	return nil
}

// PushPayload is the body of the STK push request.
type PushPayload struct {
	BusinessShortCode string      `json:"BusinessShortCode"`
	Password          string      `json:"Password"`
	Timestamp         string      `json:"Timestamp"`
	TransactionType   string      `json:"TransactionType"`
	Amount            json.Number `json:"Amount"`
	PartyA            string      `json:"PartyA"`
	PartyB            string      `json:"PartyB"`
	PhoneNumber       string      `json:"PhoneNumber"`
	CallBackURL       string      `json:"CallBackURL"`
	AccountReference  string      `json:"AccountReference"`
	TransactionDesc   string      `json:"TransactionDesc"`
}

// PushResponse is the synchronous acknowledgement Daraja returns for an STK push.
// Only used for logging; callers get the raw body.
type PushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

type tokenResp struct {
	AccessToken string          `json:"access_token"`
	ExpiresIn   json.RawMessage `json:"expires_in"`
}
