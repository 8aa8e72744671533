package domain

// Category is the coarse content type detected for a query. It selects
// which formatting template renders the gathered live data.
type Category string

const (
	CategorySports   Category = "sports"
	CategoryFinance  Category = "finance"
	CategoryWeather  Category = "weather"
	CategoryNews     Category = "news"
	CategoryShopping Category = "shopping"
	CategoryGeneric  Category = "generic"
)
