package mpesa

import (
	"testing"
	"time"

	"github.com/amirhossein-jamali/payment-reconciler/internal/domain/entity"
	errs "github.com/amirhossein-jamali/payment-reconciler/internal/domain/error"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const successCallback = `{
  "Body": {
    "stkCallback": {
      "MerchantRequestID": "29115-34620561-1",
      "CheckoutRequestID": "ws_CO_191220191020363925",
      "ResultCode": 0,
      "ResultDesc": "The service request is processed successfully.",
      "CallbackMetadata": {
        "Item": [
          {"Name": "Amount", "Value": 1500.00},
          {"Name": "MpesaReceiptNumber", "Value": "NLJ7RT61SV"},
          {"Name": "Balance"},
          {"Name": "TransactionDate", "Value": 20240301150405},
          {"Name": "PhoneNumber", "Value": 254712345678}
        ]
      }
    }
  }
}`

func TestParseCallback(t *testing.T) {
	t.Run("Success carries receipt and payment time", func(t *testing.T) {
		callback, err := ParseCallback([]byte(successCallback))
		require.NoError(t, err)
		assert.Equal(t, "ws_CO_191220191020363925", callback.CheckoutRequestID)

		outcome := callback.Outcome()
		assert.Equal(t, entity.StatusSuccess, outcome.Status)
		assert.Equal(t, "0", outcome.Code)
		assert.Equal(t, "NLJ7RT61SV", outcome.ReceiptRef)
		require.NotNil(t, outcome.PaidAt)
		assert.Equal(t, time.Date(2024, 3, 1, 12, 4, 5, 0, time.UTC), *outcome.PaidAt)

		metadata := callback.Metadata()
		assert.Equal(t, "254712345678", metadata["PhoneNumber"])
		assert.Equal(t, "", metadata["Balance"])
	})

	t.Run("Cancellation has no receipt", func(t *testing.T) {
		body := `{"Body":{"stkCallback":{"MerchantRequestID":"m","CheckoutRequestID":"ws_CO_2","ResultCode":"1032","ResultDesc":"Request cancelled by user"}}}`
		callback, err := ParseCallback([]byte(body))
		require.NoError(t, err)

		outcome := callback.Outcome()
		assert.Equal(t, entity.StatusCancelled, outcome.Status)
		assert.Empty(t, outcome.ReceiptRef)
		assert.Nil(t, outcome.PaidAt)
		assert.Nil(t, callback.Metadata())
	})

	t.Run("Malformed bodies are rejected", func(t *testing.T) {
		for name, body := range map[string]string{
			"not json":         `{"Body":`,
			"missing callback": `{"Body":{}}`,
			"missing id":       `{"Body":{"stkCallback":{"ResultCode":0}}}`,
			"missing code":     `{"Body":{"stkCallback":{"CheckoutRequestID":"ws_CO_3"}}}`,
			"object code":      `{"Body":{"stkCallback":{"CheckoutRequestID":"ws_CO_3","ResultCode":{}}}}`,
		} {
			_, err := ParseCallback([]byte(body))
			assert.ErrorIs(t, err, errs.ErrInvalidFormat, name)
		}
	})
}
