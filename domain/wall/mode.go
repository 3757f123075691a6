package wall

import (
	"net/url"
	"strings"
)

// Mode selects which view a page shows. It is driven by a single "mode"
// query parameter and is not enforced server side.
type Mode string

const (
	Landing Mode = "landing"
	Guest   Mode = "guest"
	Display Mode = "wall"
	Admin   Mode = "admin"

	ModeParam = "mode"
)

// ParseMode maps a raw query value to a Mode; unknown values land on Landing.
func ParseMode(raw string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case Guest:
		return Guest
	case Display:
		return Display
	case Admin:
		return Admin
	default:
		return Landing
	}
}

// GuestLinks carries what the wall needs to invite guests: the submission
// page URL and an image URL of its QR code.
type GuestLinks struct {
	GuestURL string `json:"guestUrl"`
	QRURL    string `json:"qrUrl"`
}

// NewGuestLinks derives the guest URL from the page base URL (query string
// dropped) and encodes it into the QR generation service URL.
func NewGuestLinks(baseURL, qrService string) (GuestLinks, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return GuestLinks{}, err
	}
	base.RawQuery = url.Values{ModeParam: {string(Guest)}}.Encode()
	base.Fragment = ""
	guestURL := base.String()

	qr, err := url.Parse(qrService)
	if err != nil {
		return GuestLinks{}, err
	}
	query := qr.Query()
	query.Set("size", "300x300")
	query.Set("data", guestURL)
	query.Set("color", "000000")
	query.Set("bgcolor", "ffffff")
	qr.RawQuery = query.Encode()

	return GuestLinks{GuestURL: guestURL, QRURL: qr.String()}, nil
}
