package message

import "strings"

// Tokens holds the substitution values for the order message template.
type Tokens struct {
	OrderID     string
	ProductList string
	Total       string
	Name        string
	Phone       string
	City        string
	Address     string
}

// Render substitutes the recognized placeholder tokens into the template.
// Substitution is a single left-to-right pass: replacement values are never
// rescanned, so a value containing a token spelling stays literal.
// Unrecognized placeholders pass through verbatim.
func Render(template string, tokens Tokens) string {
	replacer := strings.NewReplacer(
		"{order_id}", tokens.OrderID,
		"{product_list}", tokens.ProductList,
		"{total}", tokens.Total,
		"{name}", tokens.Name,
		"{phone}", tokens.Phone,
		"{city}", tokens.City,
		"{address}", tokens.Address,
	)
	return replacer.Replace(template)
}
