package message

import (
	"strings"
	"testing"
)

func TestRenderReplacesAllTokens(t *testing.T) {
	template := "Order {order_id}:\n{product_list}\nTotal: {total}\n{name} / {phone}\n{address}, {city}"
	got := Render(template, Tokens{
		OrderID:     "42",
		ProductList: "Widget x 2 - $20.00",
		Total:       "$20.00",
		Name:        "Jane Doe",
		Phone:       "555",
		City:        "Springfield",
		Address:     "1 Main St",
	})

	want := "Order 42:\nWidget x 2 - $20.00\nTotal: $20.00\nJane Doe / 555\n1 Main St, Springfield"
	if got != want {
		t.Fatalf("unexpected render:\n%q\nwant:\n%q", got, want)
	}
}

func TestRenderRepeatedTokens(t *testing.T) {
	got := Render("{total} and again {total}", Tokens{Total: "$5.00"})
	if got != "$5.00 and again $5.00" {
		t.Fatalf("unexpected render: %q", got)
	}
}

func TestRenderLeavesUnknownTokens(t *testing.T) {
	got := Render("Hi {customer}, total {total}", Tokens{Total: "$1.00"})
	if got != "Hi {customer}, total $1.00" {
		t.Fatalf("unknown token should pass through, got %q", got)
	}
}

func TestRenderSinglePass(t *testing.T) {
	// A token value that itself looks like a token must not be expanded.
	got := Render("{name} owes {total}", Tokens{Name: "{total}", Total: "$9.00"})
	if got != "{total} owes $9.00" {
		t.Fatalf("replacement values must not be rescanned, got %q", got)
	}
}

func TestRenderEmptyValues(t *testing.T) {
	got := Render("Name: {name}, City: {city}", Tokens{})
	if got != "Name: , City: " {
		t.Fatalf("empty tokens should render as empty strings, got %q", got)
	}
}

func TestStripMarkup(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"<b>Widget</b>", "Widget"},
		{"Tom &amp; Jerry", "Tom & Jerry"},
		{"<a href=\"x\">link</a> text", "link text"},
	}
	for _, tc := range cases {
		if got := StripMarkup(tc.in); got != tc.want {
			t.Fatalf("StripMarkup(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestStripMarkupNoAngleBrackets(t *testing.T) {
	in := strings.Repeat("abc ", 3)
	if got := StripMarkup(in); got != in {
		t.Fatalf("expected passthrough, got %q", got)
	}
}
