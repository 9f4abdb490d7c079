package qrcode

import (
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"
)

// DefaultSize is the edge length in pixels of generated images
const DefaultSize = 256

// Generator renders PNG QR codes linking to an order
type Generator interface {
	Generate(orderID uint) ([]byte, error)
}

type OrderLinkGenerator struct {
	BaseURL string
	Size    int
}

// NewOrderLinkGenerator creates a generator for links under baseURL
func NewOrderLinkGenerator(baseURL string) *OrderLinkGenerator {
	return &OrderLinkGenerator{BaseURL: strings.TrimRight(baseURL, "/"), Size: DefaultSize}
}

// OrderURL is the link encoded for orderID
func (g *OrderLinkGenerator) OrderURL(orderID uint) string {
	return fmt.Sprintf("%s/api/v1/protected/orders/%d", g.BaseURL, orderID)
}

func (g *OrderLinkGenerator) Generate(orderID uint) ([]byte, error) {
	size := g.Size
	if size <= 0 {
		size = DefaultSize
	}
	return qrcode.Encode(g.OrderURL(orderID), qrcode.Medium, size)
}
