package memory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/utafrali/brewhouse/internal/domain"
)

var seededAt = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func item(kind domain.Kind, id, name, desc, price, category string, rating float64, popular bool) domain.Product {
	return domain.Product{
		ID:          id,
		Kind:        kind,
		Name:        name,
		Description: desc,
		Price:       decimal.RequireFromString(price),
		ImageURL:    "/images/" + id + ".jpg",
		Category:    category,
		Rating:      rating,
		Popular:     popular,
		CreatedAt:   seededAt,
	}
}

// SeedProducts is the default menu. It mirrors migrations/002_seed_menu.up.sql.
func SeedProducts() []domain.Product {
	return []domain.Product{
		item(domain.KindCoffee, "c1", "Caffè Latte", "Espresso with steamed milk and a thin layer of foam.", "4.50", "Hot", 4.7, true),
		item(domain.KindCoffee, "c2", "Americano", "Espresso lengthened with hot water.", "3.00", "Hot", 4.4, false),
		item(domain.KindCoffee, "c3", "Cappuccino", "Equal parts espresso, steamed milk and foam.", "4.25", "Hot", 4.6, true),
		item(domain.KindCoffee, "c4", "Cold Brew", "Steeped for eighteen hours, served over ice.", "4.75", "Iced", 4.8, true),
		item(domain.KindCoffee, "c5", "Iced Mocha", "Espresso, chocolate and cold milk over ice.", "5.25", "Iced", 4.3, false),
		item(domain.KindCoffee, "c6", "Espresso", "A double shot of our house blend.", "2.75", "Espresso", 4.5, false),

		item(domain.KindMatcha, "m1", "Matcha Latte", "Ceremonial matcha whisked into steamed milk.", "5.50", "Latte", 4.8, true),
		item(domain.KindMatcha, "m2", "Iced Matcha", "Matcha shaken with milk over ice.", "5.75", "Iced", 4.6, true),
		item(domain.KindMatcha, "m3", "Usucha", "Thin matcha whisked with hot water.", "4.50", "Traditional", 4.5, false),
		item(domain.KindMatcha, "m4", "Strawberry Matcha", "Matcha over strawberry purée and milk.", "6.25", "Iced", 4.7, false),

		item(domain.KindDessert, "d1", "Matcha Tiramisu", "Mascarpone layered with matcha-soaked ladyfingers.", "6.50", "Cakes", 4.9, true),
		item(domain.KindDessert, "d2", "Butter Croissant", "Laminated all-butter croissant.", "3.25", "Pastries", 4.4, false),
		item(domain.KindDessert, "d3", "Basque Cheesecake", "Burnt-top cheesecake with a soft centre.", "6.00", "Cakes", 4.7, true),
		item(domain.KindDessert, "d4", "Chocolate Cookie", "Dark chocolate chunks and sea salt.", "2.50", "Cookies", 4.2, false),
	}
}

func addOn(id, name, desc, price, typ string) domain.AddOn {
	return domain.AddOn{ID: id, Name: name, Description: desc, Price: decimal.RequireFromString(price), Type: typ}
}

// SeedAddOns is the default add-on list.
func SeedAddOns() []domain.AddOn {
	return []domain.AddOn{
		addOn("a1", "Vanilla Syrup", "House-made vanilla bean syrup.", "0.75", "Syrup"),
		addOn("a2", "Caramel Syrup", "Slow-cooked caramel.", "0.75", "Syrup"),
		addOn("a3", "Oat Milk", "Barista oat milk.", "0.60", "Milk"),
		addOn("a4", "Almond Milk", "Unsweetened almond milk.", "0.60", "Milk"),
		addOn("a5", "Whipped Cream", "Lightly sweetened cream.", "0.50", "Topping"),
		addOn("a6", "Extra Shot", "An additional espresso shot.", "1.00", "Coffee"),
		addOn("a7", "Honey", "Local wildflower honey.", "0.40", "Sweetener"),
	}
}
