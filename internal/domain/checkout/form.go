// internal/domain/checkout/form.go
package checkout

import (
	"regexp"
	"strings"
)

var (
	emailPattern  = regexp.MustCompile(`\S+@\S+\.\S+`)
	expiryPattern = regexp.MustCompile(`^\d{2}/\d{2}$`)
	cvvPattern    = regexp.MustCompile(`^\d{3,4}$`)
	nonDigits     = regexp.MustCompile(`[^0-9]`)
)

// ShippingInfo is the first checkout step
type ShippingInfo struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zip_code"`
}

// PaymentInfo is the second checkout step
type PaymentInfo struct {
	CardNumber string `json:"card_number"`
	CardName   string `json:"card_name"`
	ExpiryDate string `json:"expiry_date"`
	CVV        string `json:"cvv"`
}

// Form is the complete checkout form
type Form struct {
	Shipping ShippingInfo `json:"shipping"`
	Payment  PaymentInfo  `json:"payment"`
}

// FieldErrors maps a form field to its inline message
type FieldErrors map[string]string

// Validate checks every shipping field
func (s ShippingInfo) Validate() FieldErrors {
	errs := FieldErrors{}
	if isBlank(s.FirstName) {
		errs["first_name"] = "First name is required"
	}
	if isBlank(s.LastName) {
		errs["last_name"] = "Last name is required"
	}
	if isBlank(s.Email) {
		errs["email"] = "Email is required"
	} else if !emailPattern.MatchString(s.Email) {
		errs["email"] = "Email is invalid"
	}
	if isBlank(s.Address) {
		errs["address"] = "Address is required"
	}
	if isBlank(s.City) {
		errs["city"] = "City is required"
	}
	if isBlank(s.State) {
		errs["state"] = "State is required"
	}
	if isBlank(s.ZipCode) {
		errs["zip_code"] = "ZIP code is required"
	}
	return errs
}

// Normalize formats the card number and expiry the way the form displays them
func (p PaymentInfo) Normalize() PaymentInfo {
	p.CardNumber = FormatCardNumber(p.CardNumber)
	p.ExpiryDate = FormatExpiryDate(p.ExpiryDate)
	return p
}

// Validate checks every payment field
func (p PaymentInfo) Validate() FieldErrors {
	errs := FieldErrors{}
	if isBlank(p.CardNumber) {
		errs["card_number"] = "Card number is required"
	} else if len(strings.Join(strings.Fields(p.CardNumber), "")) < 16 {
		errs["card_number"] = "Card number must be 16 digits"
	}
	if isBlank(p.CardName) {
		errs["card_name"] = "Name on card is required"
	}
	if isBlank(p.ExpiryDate) {
		errs["expiry_date"] = "Expiry date is required"
	} else if !expiryPattern.MatchString(p.ExpiryDate) {
		errs["expiry_date"] = "Invalid format (MM/YY)"
	}
	if isBlank(p.CVV) {
		errs["cvv"] = "CVV is required"
	} else if !cvvPattern.MatchString(p.CVV) {
		errs["cvv"] = "CVV must be 3-4 digits"
	}
	return errs
}

// Validate checks both steps of the form
func (f Form) Validate() FieldErrors {
	errs := f.Shipping.Validate()
	for field, msg := range f.Payment.Validate() {
		errs[field] = msg
	}
	return errs
}

// LastFour returns the final four digits of the card number
func (p PaymentInfo) LastFour() string {
	digits := nonDigits.ReplaceAllString(p.CardNumber, "")
	if len(digits) < 4 {
		return digits
	}
	return digits[len(digits)-4:]
}

// FormatCardNumber groups up to 16 digits in blocks of four. Input with
// fewer than four digits is returned unchanged.
func FormatCardNumber(value string) string {
	digits := nonDigits.ReplaceAllString(value, "")
	if len(digits) < 4 {
		return value
	}
	if len(digits) > 16 {
		digits = digits[:16]
	}

	parts := make([]string, 0, 4)
	for i := 0; i < len(digits); i += 4 {
		end := i + 4
		if end > len(digits) {
			end = len(digits)
		}
		parts = append(parts, digits[i:end])
	}
	return strings.Join(parts, " ")
}

// FormatExpiryDate turns digit input into MM/YY
func FormatExpiryDate(value string) string {
	digits := nonDigits.ReplaceAllString(value, "")
	if len(digits) < 2 {
		return digits
	}
	if len(digits) > 4 {
		digits = digits[:4]
	}
	return digits[:2] + "/" + digits[2:]
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
