package domain

// Hotel is a catalog record. The catalog service owns and mutates hotels;
// this client only reads them.
type Hotel struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Address     string   `json:"address"`
	Description string   `json:"description"`
	Rating      float64  `json:"rating"`
	Price       float64  `json:"price"` // nightly rate
	Image       string   `json:"image"`
	Amenities   []string `json:"amenities"`
	City        string   `json:"city"`
	Country     string   `json:"country"`
}

// SearchFilters is a query descriptor; nil fields are omitted from the
// outbound request.
type SearchFilters struct {
	City     *string
	CheckIn  *string // yyyy-MM-dd
	CheckOut *string // yyyy-MM-dd
	Guests   *int
	MinPrice *float64
	MaxPrice *float64
}

func (f SearchFilters) IsZero() bool {
	return f.City == nil && f.CheckIn == nil && f.CheckOut == nil &&
		f.Guests == nil && f.MinPrice == nil && f.MaxPrice == nil
}
