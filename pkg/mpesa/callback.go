package mpesa

import "encoding/json"

// CallbackEnvelope is the STK result notification Daraja posts to CallBackURL.
type CallbackEnvelope struct {
	Body struct {
		STKCallback STKCallback `json:"stkCallback"`
	} `json:"Body"`
}

type STKCallback struct {
	MerchantRequestID string `json:"MerchantRequestID"`
	CheckoutRequestID string `json:"CheckoutRequestID"`
	ResultCode        int    `json:"ResultCode"`
	ResultDesc        string `json:"ResultDesc"`
	CallbackMetadata  struct {
		Item []CallbackItem `json:"Item"`
	} `json:"CallbackMetadata"`
}

type CallbackItem struct {
	Name  string          `json:"Name"`
	Value json.RawMessage `json:"Value,omitempty"`
}

// Item returns the raw value of the named metadata item, e.g. "MpesaReceiptNumber".
func (s STKCallback) Item(name string) (json.RawMessage, bool) {
	for _, it := range s.CallbackMetadata.Item {
		if it.Name == name {
			return it.Value, true
		}
	}
	return nil, false
}

// ParseCallback decodes raw as an STK callback. ok is false when raw is not
// JSON or carries no CheckoutRequestID; callers should still accept the body.
func ParseCallback(raw []byte) (cb STKCallback, ok bool) {
	var env CallbackEnvelope
	if err := codec.Unmarshal(raw, &env); err != nil {
		return STKCallback{}, false
	}
	cb = env.Body.STKCallback
	return cb, cb.CheckoutRequestID != ""
}
