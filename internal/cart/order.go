package cart

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrEmptyCart is returned when a handoff is requested for an empty cart.
var ErrEmptyCart = errors.New("cart is empty")

// DefaultMailSubject is the subject of order e-mails.
const DefaultMailSubject = "Bestelling via website"

// ToOrderText renders the itemized order message with its grand total.
// An empty cart renders as "".
func (c *Cart) ToOrderText() string {
	lines := c.Lines()
	if len(lines) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Hoi! Ik wil graag het volgende bestellen:\n\n")
	for _, l := range lines {
		fmt.Fprintf(&b, "- %s (x%d) - %s\n", l.Name, l.Quantity, euros(l.Subtotal()))
	}
	b.WriteString("\nTotaal: " + euros(total(lines)) + "\n\n")
	b.WriteString("Graag hoor ik wat de volgende stappen zijn.\n\nMet vriendelijke groet,")
	return b.String()
}

// WhatsAppURL builds a wa.me link prefilled with the order text.
func (c *Cart) WhatsAppURL(number string) (string, error) {
	text := c.ToOrderText()
	if text == "" {
		return "", ErrEmptyCart
	}
	number = strings.TrimPrefix(strings.ReplaceAll(number, " ", ""), "+")
	return "https://wa.me/" + number + "?text=" + escape(text), nil
}

// MailtoURL builds a mailto link with the order text as body.
func (c *Cart) MailtoURL(address, subject string) (string, error) {
	text := c.ToOrderText()
	if text == "" {
		return "", ErrEmptyCart
	}
	if subject == "" {
		subject = DefaultMailSubject
	}
	return "mailto:" + address + "?subject=" + escape(subject) + "&body=" + escape(text), nil
}

// escape percent-encodes s for a query value, spaces as %20 so mail and
// chat clients do not show literal plus signs.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
