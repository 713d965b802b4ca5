// Package paynow constructs payment-provider redirect/QR targets. Building a
// link is pure URL formatting; the provider itself is an external
// collaborator that later reports the outcome through the webhook.
package paynow

import (
	"fmt"
	"net/url"
)

// LinkBuilder constructs payment targets for a single merchant
type LinkBuilder struct {
	baseURL      string
	merchantCode string
}

// NewLinkBuilder creates a LinkBuilder
func NewLinkBuilder(baseURL, merchantCode string) *LinkBuilder {
	return &LinkBuilder{
		baseURL:      baseURL,
		merchantCode: merchantCode,
	}
}

// PaymentLink builds the checkout target for a new order
func (b *LinkBuilder) PaymentLink(reference string, amount float64, email string) string {
	params := url.Values{}
	params.Set("merchant", b.merchantCode)
	params.Set("reference", reference)
	params.Set("amount", fmt.Sprintf("%.2f", amount))
	params.Set("email", email)

	return b.baseURL + "?" + params.Encode()
}

// ResendLink rebuilds a target from a stored payment reference
func (b *LinkBuilder) ResendLink(reference string) string {
	params := url.Values{}
	params.Set("merchant", b.merchantCode)
	params.Set("reference", reference)

	return b.baseURL + "?" + params.Encode()
}
