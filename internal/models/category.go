package models

// Category is a named grouping of deals. Names are unique case-insensitively.
type Category struct {
	Name string `firestore:"name" json:"name"`
}

// CategoryInput is the payload for registering a category.
type CategoryInput struct {
	Name string `json:"name" validate:"min=2"`
}
