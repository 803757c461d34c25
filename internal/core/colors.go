package core

// CategoryColors is the fixed category→display-color table. Unknown
// categories fall back to DefaultColor.
var CategoryColors = map[string]string{
	"Housing":        "#FF6B6B",
	"Food":           "#4ECDC4",
	"Transportation": "#45B7D1",
	"Utilities":      "#96CEB4",
	"Entertainment":  "#FFEEAD",
	"Work":           "#D4A5A5",
	"Food and Drink": "#82ca9d",
	"Service":        "#4a90e2",
	"Shops":          "#f06292",
	"Transfer":       "#7986cb",
	"Travel":         "#ffd54f",
	"Other":          "#90a4ae",
}

// DefaultColor is used for categories missing from the table.
const DefaultColor = "#8884d8"

// ColorFor looks up the display color for a category.
func ColorFor(category string) string {
	if c, ok := CategoryColors[category]; ok {
		return c
	}
	return DefaultColor
}
