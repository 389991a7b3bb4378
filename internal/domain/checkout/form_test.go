package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validShipping() ShippingInfo {
	return ShippingInfo{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@example.com",
		Address:   "1 Main St",
		City:      "Springfield",
		State:     "IL",
		ZipCode:   "62701",
	}
}

func validPayment() PaymentInfo {
	return PaymentInfo{
		CardNumber: "4242 4242 4242 4242",
		CardName:   "Jane Doe",
		ExpiryDate: "12/29",
		CVV:        "123",
	}
}

func TestShippingInfo_Validate(t *testing.T) {
	assert.Empty(t, validShipping().Validate())

	errs := ShippingInfo{FirstName: "  ", Email: "jane"}.Validate()
	assert.Equal(t, FieldErrors{
		"first_name": "First name is required",
		"last_name":  "Last name is required",
		"email":      "Email is invalid",
		"address":    "Address is required",
		"city":       "City is required",
		"state":      "State is required",
		"zip_code":   "ZIP code is required",
	}, errs)

	s := validShipping()
	s.Email = ""
	assert.Equal(t, "Email is required", s.Validate()["email"])
}

func TestPaymentInfo_Validate(t *testing.T) {
	assert.Empty(t, validPayment().Validate())

	assert.Equal(t, FieldErrors{
		"card_number": "Card number is required",
		"card_name":   "Name on card is required",
		"expiry_date": "Expiry date is required",
		"cvv":         "CVV is required",
	}, PaymentInfo{}.Validate())

	p := PaymentInfo{CardNumber: "4242 4242", CardName: "J", ExpiryDate: "1229", CVV: "12a"}
	assert.Equal(t, FieldErrors{
		"card_number": "Card number must be 16 digits",
		"expiry_date": "Invalid format (MM/YY)",
		"cvv":         "CVV must be 3-4 digits",
	}, p.Validate())
}

func TestForm_ValidateMergesSteps(t *testing.T) {
	f := Form{Shipping: validShipping(), Payment: PaymentInfo{CardName: "J", ExpiryDate: "01/30", CVV: "9999"}}
	assert.Equal(t, FieldErrors{"card_number": "Card number is required"}, f.Validate())
}

func TestFormatCardNumber(t *testing.T) {
	assert.Equal(t, "4242 4242 4242 4242", FormatCardNumber("4242424242424242"))
	assert.Equal(t, "4242 4242 4242 4242", FormatCardNumber("4242-4242-4242-4242-99"))
	assert.Equal(t, "1234 5", FormatCardNumber("12345"))
	assert.Equal(t, "12", FormatCardNumber("12"))
}

func TestFormatExpiryDate(t *testing.T) {
	assert.Equal(t, "12/29", FormatExpiryDate("1229"))
	assert.Equal(t, "12/29", FormatExpiryDate("12/29"))
	assert.Equal(t, "12/", FormatExpiryDate("12"))
	assert.Equal(t, "1", FormatExpiryDate("1"))
	assert.Equal(t, "01/30", FormatExpiryDate("0130555"))
}

func TestPaymentInfo_NormalizeAndLastFour(t *testing.T) {
	p := PaymentInfo{CardNumber: "4000056655665556", ExpiryDate: "0731"}.Normalize()
	assert.Equal(t, "4000 0566 5566 5556", p.CardNumber)
	assert.Equal(t, "07/31", p.ExpiryDate)
	assert.Equal(t, "5556", p.LastFour())
}
