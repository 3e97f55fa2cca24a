package mpesa

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Transaction and command types
const (
	TransactionTypePayBillOnline = "CustomerPayBillOnline"
	CommandBusinessPayment       = "BusinessPayment"
	ResponseTypeCompleted        = "Completed"
	ResponseCodeAccepted         = "0"
)

// Credentials is a Daraja app's consumer key pair.
type Credentials struct {
	ConsumerKey    string
	ConsumerSecret string
}

// STKPushRequest is the Lipa Na M-Pesa Online process request body.
type STKPushRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            int64  `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

type STKPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

// Accepted reports whether the provider queued the prompt.
func (r *STKPushResponse) Accepted() bool {
	return r.ResponseCode == ResponseCodeAccepted
}

// B2CRequest is the v3 payment request body.
type B2CRequest struct {
	OriginatorConversationID string  `json:"OriginatorConversationID"`
	InitiatorName            string  `json:"InitiatorName"`
	SecurityCredential       string  `json:"SecurityCredential"`
	CommandID                string  `json:"CommandID"`
	Amount                   float64 `json:"Amount"`
	PartyA                   string  `json:"PartyA"`
	PartyB                   string  `json:"PartyB"`
	Remarks                  string  `json:"Remarks"`
	QueueTimeOutURL          string  `json:"QueueTimeOutURL"`
	ResultURL                string  `json:"ResultURL"`
	Occasion                 string  `json:"Occasion"`
}

type B2CResponse struct {
	ConversationID           string `json:"ConversationID"`
	OriginatorConversationID string `json:"OriginatorConversationID"`
	ResponseCode             string `json:"ResponseCode"`
	ResponseDescription      string `json:"ResponseDescription"`
}

type RegisterURLRequest struct {
	ShortCode       string `json:"ShortCode"`
	ResponseType    string `json:"ResponseType"`
	ConfirmationURL string `json:"ConfirmationURL"`
	ValidationURL   string `json:"ValidationURL"`
}

type RegisterURLResponse struct {
	OriginatorCoversationID string `json:"OriginatorCoversationID"` // sic, as sent by Daraja
	ResponseCode            string `json:"ResponseCode"`
	ResponseDescription     string `json:"ResponseDescription"`
}

// Code is a result code that Daraja sends either as a number or a string.
type Code int

func (c *Code) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	if s == "" || s == "null" {
		*c = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*c = Code(n)
	return nil
}

// STKCallback is the envelope posted to the STK CallBackURL.
type STKCallback struct {
	Body struct {
		StkCallback STKResult `json:"stkCallback"`
	} `json:"Body"`
}

type STKResult struct {
	MerchantRequestID string `json:"MerchantRequestID"`
	CheckoutRequestID string `json:"CheckoutRequestID"`
	ResultCode        Code   `json:"ResultCode"`
	ResultDesc        string `json:"ResultDesc"`
	CallbackMetadata  struct {
		Item Items `json:"Item"`
	} `json:"CallbackMetadata"`
}

// Item is one metadata entry of an STK callback.
type Item struct {
	Name  string          `json:"Name"`
	Value json.RawMessage `json:"Value,omitempty"`
}

type Items []Item

// Params indexes the items by name.
func (it Items) Params() Params {
	p := make(Params, len(it))
	for _, item := range it {
		p[item.Name] = item.Value
	}
	return p
}

// B2CResultEnvelope is the body posted to the B2C ResultURL and QueueTimeOutURL.
type B2CResultEnvelope struct {
	Result B2CResult `json:"Result"`
}

type B2CResult struct {
	ResultType               int              `json:"ResultType"`
	ResultCode               Code             `json:"ResultCode"`
	ResultDesc               string           `json:"ResultDesc"`
	OriginatorConversationID string           `json:"OriginatorConversationID"`
	ConversationID           string           `json:"ConversationID"`
	TransactionID            string           `json:"TransactionID"`
	ResultParameters         ResultParameters `json:"ResultParameters"`
	ReferenceData            struct {
		ReferenceItem ResultParameterList `json:"ReferenceItem"`
	} `json:"ReferenceData"`
}

// ResultParameter is one {Key, Value} pair of a B2C result.
type ResultParameter struct {
	Key   string          `json:"Key"`
	Value json.RawMessage `json:"Value,omitempty"`
}

type ResultParameters struct {
	ResultParameter ResultParameterList `json:"ResultParameter"`
}

// Params indexes the result parameters by key.
func (r ResultParameters) Params() Params {
	return r.ResultParameter.Params()
}

// ResultParameterList accepts both a JSON array and a single object, since
// Daraja collapses one-element lists.
type ResultParameterList []ResultParameter

func (l *ResultParameterList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if data[0] == '{' {
		var single ResultParameter
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		*l = ResultParameterList{single}
		return nil
	}
	var list []ResultParameter
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*l = list
	return nil
}

func (l ResultParameterList) Params() Params {
	p := make(Params, len(l))
	for _, param := range l {
		p[param.Key] = param.Value
	}
	return p
}

// C2BConfirmation is the body posted to the registered confirmation and
// validation URLs.
type C2BConfirmation struct {
	TransactionType   string          `json:"TransactionType"`
	TransID           string          `json:"TransID"`
	TransTime         string          `json:"TransTime"`
	TransAmount       json.RawMessage `json:"TransAmount"`
	BusinessShortCode string          `json:"BusinessShortCode"`
	BillRefNumber     string          `json:"BillRefNumber"`
	InvoiceNumber     string          `json:"InvoiceNumber"`
	OrgAccountBalance string          `json:"OrgAccountBalance"`
	ThirdPartyTransID string          `json:"ThirdPartyTransID"`
	MSISDN            string          `json:"MSISDN"`
	FirstName         string          `json:"FirstName"`
	MiddleName        string          `json:"MiddleName"`
	LastName          string          `json:"LastName"`
}
