package model

// Company is one entity whose books are extracted.
type Company struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
