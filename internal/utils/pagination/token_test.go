package pagination_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/leasepay/leasepay_backend/internal/utils/pagination"
)

func TestEncodeDecodeToken(t *testing.T) {
	// Test case 1: Standard date/time values
	dueDate := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	createdAt := time.Date(2024, 1, 1, 14, 30, 45, 123456789, time.UTC)

	token := pagination.EncodeToken(dueDate, createdAt)
	assert.NotEmpty(t, token, "Token should not be empty")

	decodedDueDate, decodedCreatedAt, err := pagination.DecodeToken(token)
	assert.NoError(t, err, "Decoding should not return an error")
	assert.Equal(t, dueDate, decodedDueDate, "Sort time should match after decode")
	assert.Equal(t, createdAt, decodedCreatedAt, "Created at time should match after decode")

	// Test case 2: Zero time values
	zeroTime := time.Time{}
	zeroToken := pagination.EncodeToken(zeroTime, zeroTime)
	decodedZeroDate, decodedZeroTime, err := pagination.DecodeToken(zeroToken)
	assert.NoError(t, err, "Decoding zero time should not return an error")
	assert.Equal(t, zeroTime, decodedZeroDate, "Zero date should match after decode")
	assert.Equal(t, zeroTime, decodedZeroTime, "Zero time should match after decode")

	// Test case 3: Current time values
	now := time.Now().UTC()
	nowToken := pagination.EncodeToken(now, now)
	decodedNowDate, decodedNowTime, err := pagination.DecodeToken(nowToken)
	assert.NoError(t, err, "Decoding current time should not return an error")
	assert.True(t, now.Equal(decodedNowDate), "Current date should match after decode")
	assert.True(t, now.Equal(decodedNowTime), "Current time should match after decode")
}

func TestDecodeTokenError(t *testing.T) {
	// Test invalid base64
	_, _, err := pagination.DecodeToken("this is not base64!")
	assert.Error(t, err, "Should return an error for invalid base64")
	assert.Contains(t, err.Error(), "base64 decode", "Error should mention base64 decoding")

	// Test invalid format (missing separator)
	invalidToken := "MjAyMy0wNS0xNVQwMDowMDowMFo=" // Base64 encoded date without separator
	_, _, err = pagination.DecodeToken(invalidToken)
	assert.Error(t, err, "Should return an error for invalid token format")
	assert.Contains(t, err.Error(), "split", "Error should mention splitting issue")

	// Test invalid date format
	invalidDateToken := "bm90YWRhdGV8MjAyMy0wNS0xNVQxNDozMDo0NS4xMjM0NTY3ODla" // Base64 encoded "notadate|2023-05-15T14:30:45.123456789Z"
	_, _, err = pagination.DecodeToken(invalidDateToken)
	assert.Error(t, err, "Should return an error for invalid date format")
	assert.Contains(t, err.Error(), "sort time parse", "Error should mention date parsing issue")
}

func TestEncodeDecodeCursorToken(t *testing.T) {
	createdAt := time.Date(2024, 3, 10, 9, 15, 0, 987654321, time.UTC)
	transactionID := "6c1a2f38-9f57-4a6e-8d21-0b3c4de5f601"

	token := pagination.EncodeCursorToken(createdAt, transactionID)
	assert.NotEmpty(t, token, "Token should not be empty")

	decodedTime, decodedID, err := pagination.DecodeCursorToken(token)
	assert.NoError(t, err, "Decoding should not return an error")
	assert.Equal(t, createdAt, decodedTime, "Sort time should match after decode")
	assert.Equal(t, transactionID, decodedID, "Row id should match after decode")
}

func TestCursorToken_DistinguishesSameTimestampRows(t *testing.T) {
	// Rows posted in one batch share a timestamp; the tokens must still
	// differ so each row can anchor its own page boundary.
	batchTime := time.Date(2024, 3, 10, 9, 15, 0, 0, time.UTC)

	tokenA := pagination.EncodeCursorToken(batchTime, "txn-a")
	tokenB := pagination.EncodeCursorToken(batchTime, "txn-b")
	assert.NotEqual(t, tokenA, tokenB, "Same-timestamp rows should yield distinct tokens")

	_, idA, err := pagination.DecodeCursorToken(tokenA)
	assert.NoError(t, err)
	_, idB, err := pagination.DecodeCursorToken(tokenB)
	assert.NoError(t, err)
	assert.Equal(t, "txn-a", idA)
	assert.Equal(t, "txn-b", idB)
}

func TestDecodeCursorTokenError(t *testing.T) {
	// Invalid base64
	_, _, err := pagination.DecodeCursorToken("not base64!")
	assert.Error(t, err, "Should return an error for invalid base64")
	assert.Contains(t, err.Error(), "base64 decode", "Error should mention base64 decoding")

	// Missing separator
	_, _, err = pagination.DecodeCursorToken("MjAyMy0wNS0xNVQwMDowMDowMFo=")
	assert.Error(t, err, "Should return an error for a token without a separator")
	assert.Contains(t, err.Error(), "split", "Error should mention splitting issue")

	// Empty id half
	emptyIDToken := pagination.EncodeCursorToken(time.Date(2024, 3, 10, 9, 15, 0, 0, time.UTC), "")
	_, _, err = pagination.DecodeCursorToken(emptyIDToken)
	assert.Error(t, err, "Should return an error for an empty row id")
	assert.Contains(t, err.Error(), "empty id", "Error should mention the empty id")
}
