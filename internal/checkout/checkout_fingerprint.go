package checkout

import (
	"sort"
	"strconv"
	"strings"

	"go-storefront-checkout/internal/cart"
)

// Fingerprint summarizes the cart snapshot a payment session is tied to.
// Pairs are sorted by item ID before joining so reordering lines without
// changing quantities never invalidates a session; the locale is appended
// because the gateway localizes the session it issues.
func Fingerprint(items []cart.Item, locale string) string {
	pairs := make([]string, 0, len(items))
	for _, it := range items {
		pairs = append(pairs, it.ID+":"+strconv.Itoa(it.Quantity))
	}
	sort.Strings(pairs)

	var b strings.Builder
	b.WriteString(strings.Join(pairs, "|"))
	b.WriteString("@")
	b.WriteString(locale)
	return b.String()
}
