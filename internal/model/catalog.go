package model

// Category groups items by kind (electronics, clothing, ...).
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Location is a place on campus where items are lost or found.
type Location struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
