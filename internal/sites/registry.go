// Package sites holds the static retailer registry used to resolve alerts.
package sites

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSiteNotFound is returned when no descriptor exists for a site key.
var ErrSiteNotFound = errors.New("site not registered")

// Descriptor describes one retailer: how to build a product URL from a
// product identifier, plus the display name and embed color for it.
type Descriptor struct {
	Key         string
	DisplayName string
	Color       int
	BuildURL    func(productID string) string
}

// Resolved is the outcome of a successful registry resolution.
type Resolved struct {
	URL         string
	DisplayName string
	Color       int
}

// Registry maps lower-cased site keys to descriptors. Immutable after
// construction; new retailers are added here, never in parsing code.
type Registry struct {
	descriptors map[string]Descriptor
}

// New builds a registry from the given descriptors.
func New(descriptors ...Descriptor) *Registry {
	m := make(map[string]Descriptor, len(descriptors))
	for _, d := range descriptors {
		m[strings.ToLower(d.Key)] = d
	}
	return &Registry{descriptors: m}
}

// Default returns the registry of currently supported retailers.
func Default() *Registry {
	return New(
		Descriptor{
			Key:         "walmartca",
			DisplayName: "Walmart Canada",
			Color:       0x0071CE,
			BuildURL: func(id string) string {
				return fmt.Sprintf("https://www.walmart.ca/en/ip/%s", id)
			},
		},
		Descriptor{
			Key:         "bestbuyca",
			DisplayName: "Best Buy Canada",
			Color:       0x0046BE,
			BuildURL: func(id string) string {
				return fmt.Sprintf("https://www.bestbuy.ca/en-ca/product/%s", id)
			},
		},
		Descriptor{
			Key:         "amazonca",
			DisplayName: "Amazon Canada",
			Color:       0xFF9900,
			BuildURL: func(id string) string {
				return fmt.Sprintf("https://www.amazon.ca/dp/%s", id)
			},
		},
		Descriptor{
			Key:         "canadiantire",
			DisplayName: "Canadian Tire",
			Color:       0xD81E05,
			BuildURL: func(id string) string {
				return fmt.Sprintf("https://www.canadiantire.ca/en/pdp/%s.html", id)
			},
		},
		Descriptor{
			Key:         "toysrus",
			DisplayName: "Toys R Us Canada",
			Color:       0x004FA3,
			BuildURL: func(id string) string {
				return fmt.Sprintf("https://www.toysrus.ca/en/%s", id)
			},
		},
		// Catch-all for change-detection alerts whose hostname is not a
		// known retailer; the alert already carries its own URL.
		Descriptor{
			Key:         "unknown",
			DisplayName: "Unknown Retailer",
			Color:       0x95A5A6,
			BuildURL:    func(id string) string { return id },
		},
	)
}

// Lookup returns the descriptor for a site key, if registered.
func (r *Registry) Lookup(site string) (Descriptor, bool) {
	d, ok := r.descriptors[strings.ToLower(site)]
	return d, ok
}

// Resolve builds the absolute product URL for a site/product pair.
func (r *Registry) Resolve(site, productID string) (Resolved, error) {
	d, ok := r.Lookup(site)
	if !ok {
		return Resolved{}, fmt.Errorf("resolve %q: %w", site, ErrSiteNotFound)
	}
	return Resolved{
		URL:         d.BuildURL(productID),
		DisplayName: d.DisplayName,
		Color:       d.Color,
	}, nil
}
