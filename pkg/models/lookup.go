package models

// LookupItem is the unified shape every bibliographic provider result is
// projected into before it leaves the provider layer. Absent fields are "".
type LookupItem struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Publisher   string `json:"publisher"`
	ISBN        string `json:"isbn"`
	Image       string `json:"image"`
	Description string `json:"description"`
}

// SearchItem is one keyword-search hit from the XML search provider.
// Prices are nil when the provider left them empty.
type SearchItem struct {
	LookupItem
	PubDate       string `json:"pub_date"`
	Link          string `json:"link"`
	PriceStandard *int   `json:"price_standard"`
	PriceSales    *int   `json:"price_sales"`
}

// LibraryItem is the common shape of the national library variants.
type LibraryItem struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Publisher   string `json:"publisher"`
	ISBN        string `json:"ISBN"`
	PubYear     string `json:"pub_year"`
	Image       string `json:"image"`
	Description string `json:"description"`
}
