package paynow

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentLink(t *testing.T) {
	b := NewLinkBuilder("https://www.paynow.co.za/pay", "MC123")

	link := b.PaymentLink("ORD-1", 333.5, "jane@example.com")

	u, err := url.Parse(link)
	require.NoError(t, err)

	assert.Equal(t, "www.paynow.co.za", u.Host)
	assert.Equal(t, "MC123", u.Query().Get("merchant"))
	assert.Equal(t, "ORD-1", u.Query().Get("reference"))
	assert.Equal(t, "333.50", u.Query().Get("amount"))
	assert.Equal(t, "jane@example.com", u.Query().Get("email"))
}

func TestPaymentLinkEscapesQueryValues(t *testing.T) {
	b := NewLinkBuilder("https://www.paynow.co.za/pay", "MC 123")

	link := b.PaymentLink("ORD-1", 10, "a+b@example.com")

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "MC 123", u.Query().Get("merchant"))
	assert.Equal(t, "a+b@example.com", u.Query().Get("email"))
}

func TestResendLink(t *testing.T) {
	b := NewLinkBuilder("https://www.paynow.co.za/pay", "MC123")

	u, err := url.Parse(b.ResendLink("ORD-9"))
	require.NoError(t, err)

	assert.Equal(t, "ORD-9", u.Query().Get("reference"))
	assert.Empty(t, u.Query().Get("amount"))
}
