// Package tracking builds the public tracking link of a complaint and its QR
// code.
package tracking

import (
	"errors"
	"net/url"
	"strings"

	"github.com/skip2/go-qrcode"
)

const (
	DefaultQRSize = 512
	MinQRSize     = 128
	MaxQRSize     = 2048
)

var ErrInvalidSize = errors.New("invalid size: must be between 128 and 2048")

// TrackingURL returns https://<appDomain>/track/<id>. A scheme already
// present on appDomain is kept.
func TrackingURL(appDomain, complaintID string) string {
	base := strings.TrimRight(appDomain, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}
	return base + "/track/" + url.PathEscape(complaintID)
}

func GenerateQRCode(content string, size int) ([]byte, error) {
	if size == 0 {
		size = DefaultQRSize
	}
	if size < MinQRSize || size > MaxQRSize {
		return nil, ErrInvalidSize
	}

	qr, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, err
	}
	qr.DisableBorder = false

	return qr.PNG(size)
}
