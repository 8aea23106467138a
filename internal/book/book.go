package book

// Book is a seed book record as stored in the books collection.
// The store assigns the identifier on insert, so Book carries none.
type Book struct {
	Title            string   `json:"title" bson:"title" validate:"required"`
	Author           Author   `json:"author" bson:"author"`
	ShortDescription string   `json:"short_description" bson:"short_description"`
	PublishedDate    Date     `json:"published_date" bson:"published_date" validate:"required"`
	Genres           []string `json:"genres" bson:"genres"`
}

// Author is embedded in every Book rather than referenced.
type Author struct {
	Name      string `json:"name" bson:"name" validate:"required"`
	Biography string `json:"biography" bson:"biography"`
}
