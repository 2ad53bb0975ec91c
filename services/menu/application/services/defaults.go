package services

import (
	"github.com/shopspring/decimal"

	"github.com/ghuser/tablepos/services/menu/domain/models"
)

// DefaultMenu is the starter catalog installed on first run.
func DefaultMenu() []models.MenuEntry {
	e := func(id, name, price string, c models.Category) models.MenuEntry {
		return models.MenuEntry{ID: id, Name: name, UnitPrice: decimal.RequireFromString(price), Category: c}
	}
	return []models.MenuEntry{
		e("D1", "Coca Cola", "2.50", models.CategoryDrinks),
		e("D2", "Sprite", "2.50", models.CategoryDrinks),
		e("D3", "Iced Tea", "3.00", models.CategoryDrinks),
		e("D4", "Coffee", "3.50", models.CategoryDrinks),
		e("F1", "Hamburger", "12.99", models.CategoryFood),
		e("F2", "Cheeseburger", "13.99", models.CategoryFood),
		e("F3", "French Fries", "4.99", models.CategoryFood),
		e("F4", "Caesar Salad", "9.99", models.CategoryFood),
		e("C1", "Margarita", "8.99", models.CategoryCocktails),
		e("C2", "Mojito", "8.99", models.CategoryCocktails),
		e("C3", "Piña Colada", "9.99", models.CategoryCocktails),
		e("C4", "Martini", "10.99", models.CategoryCocktails),
		e("I1", "Butter Chicken", "15.99", models.CategoryIndian),
		e("I2", "Chicken Tikka", "14.99", models.CategoryIndian),
		e("I3", "Naan Bread", "3.99", models.CategoryIndian),
		e("I4", "Biryani", "16.99", models.CategoryIndian),
	}
}
