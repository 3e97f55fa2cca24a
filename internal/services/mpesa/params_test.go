package mpesa

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stkSuccessPayload = `{
  "Body": {
    "stkCallback": {
      "MerchantRequestID": "29115-34620561-1",
      "CheckoutRequestID": "ws_CO_191220191020363925",
      "ResultCode": 0,
      "ResultDesc": "The service request is processed successfully.",
      "CallbackMetadata": {
        "Item": [
          {"Name": "Amount", "Value": 1.00},
          {"Name": "MpesaReceiptNumber", "Value": "NLJ7RT61SV"},
          {"Name": "Balance"},
          {"Name": "TransactionDate", "Value": 20191219102115},
          {"Name": "PhoneNumber", "Value": 254708374149}
        ]
      }
    }
  }
}`

func TestItems_Params(t *testing.T) {
	var cb STKCallback
	require.NoError(t, json.Unmarshal([]byte(stkSuccessPayload), &cb))

	res := cb.Body.StkCallback
	assert.Equal(t, Code(0), res.ResultCode)
	assert.Equal(t, "ws_CO_191220191020363925", res.CheckoutRequestID)

	params := res.CallbackMetadata.Item.Params()

	t.Run("present string", func(t *testing.T) {
		got := params.String("MpesaReceiptNumber")
		require.NotNil(t, got)
		assert.Equal(t, "NLJ7RT61SV", *got)
	})

	t.Run("present number keeps digits", func(t *testing.T) {
		got := params.String("PhoneNumber")
		require.NotNil(t, got)
		assert.Equal(t, "254708374149", *got)
	})

	t.Run("float", func(t *testing.T) {
		got := params.Float("Amount")
		require.NotNil(t, got)
		assert.Equal(t, 1.0, *got)
	})

	t.Run("time", func(t *testing.T) {
		got := params.Time("TransactionDate", LayoutCompact)
		require.NotNil(t, got)
		assert.Equal(t, time.Date(2019, 12, 19, 10, 21, 15, 0, Nairobi), *got)
	})

	t.Run("item without value is nil", func(t *testing.T) {
		_, present := params.Lookup("Balance")
		assert.True(t, present)
		assert.Nil(t, params.String("Balance"))
		assert.Nil(t, params.Float("Balance"))
	})

	t.Run("absent key is nil", func(t *testing.T) {
		_, present := params.Lookup("Nope")
		assert.False(t, present)
		assert.Nil(t, params.String("Nope"))
		assert.Nil(t, params.Float("Nope"))
		assert.Nil(t, params.Time("Nope"))
	})
}

func TestResultParameterList_SingleObject(t *testing.T) {
	payload := `{"Result":{"ResultCode":"0","ConversationID":"AG_1",
		"ResultParameters":{"ResultParameter":{"Key":"TransactionAmount","Value":10}}}}`

	var env B2CResultEnvelope
	require.NoError(t, json.Unmarshal([]byte(payload), &env))

	assert.Equal(t, Code(0), env.Result.ResultCode)
	amount := env.Result.ResultParameters.Params().Float("TransactionAmount")
	require.NotNil(t, amount)
	assert.Equal(t, 10.0, *amount)
}

func TestResultParameterList_Missing(t *testing.T) {
	payload := `{"Result":{"ResultCode":2001,"ResultDesc":"The initiator information is invalid."}}`

	var env B2CResultEnvelope
	require.NoError(t, json.Unmarshal([]byte(payload), &env))

	assert.Equal(t, Code(2001), env.Result.ResultCode)
	assert.Empty(t, env.Result.ResultParameters.Params())
	assert.Nil(t, env.Result.ResultParameters.Params().String("TransactionReceipt"))
}

func TestRawFloat_StringValue(t *testing.T) {
	got := RawFloat(json.RawMessage(`"10.50"`))
	require.NotNil(t, got)
	assert.Equal(t, 10.5, *got)

	assert.Nil(t, RawFloat(json.RawMessage(`"abc"`)))
	assert.Nil(t, RawFloat(json.RawMessage(`{"a":1}`)))
	assert.Nil(t, RawFloat(nil))
}

func TestParseTime_Dotted(t *testing.T) {
	got := ParseTime("19.12.2019 11:45:50")
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2019, 12, 19, 11, 45, 50, 0, Nairobi), *got)

	assert.Nil(t, ParseTime("yesterday"))
}

func TestSTKPassword(t *testing.T) {
	assert.Equal(t, "MTc0Mzc5cGFzczIwMjQwMTAxMTIwMDAw", STKPassword("174379", "pass", "20240101120000"))
	assert.Equal(t, "20240101120000", Timestamp(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)))
}
