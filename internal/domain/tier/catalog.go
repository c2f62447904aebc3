package tier

import "github.com/shopspring/decimal"

func usd(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

var catalog = [Count]Tier{ //nolint:gochecknoglobals // static catalog
	Budget: {
		Index: Budget, Label: "Budget", Slug: "budget", Color: "#10b981", Icon: "💰",
		Models: []Model{
			{Name: "Samsung Galaxy A14", Price: usd(180), Image: "images/galaxya14.png"},
			{Name: "Xiaomi Redmi 12", Price: usd(160), Image: "images/redmi12.png"},
			{Name: "Nokia G42", Price: usd(200), Image: "images/g42.png"},
			{Name: "Motorola Moto G14", Price: usd(150), Image: "images/motorolag14.png"},
			{Name: "Realme C55", Price: usd(170), Image: "images/realmeC55.png"},
		},
		Strategy: Strategy{
			Title: "Budget Phone Strategy",
			Points: []string{
				"Target price-sensitive consumers with clear value messaging",
				"Highlight battery life and essential features",
				"Emphasize durability and reliability",
				"Offer competitive pricing with trade-in options",
				"Focus on emerging markets and first-time buyers",
			},
		},
	},
	MidRange: {
		Index: MidRange, Label: "Mid-Range", Slug: "mid-range", Color: "#f59e0b", Icon: "💸",
		Models: []Model{
			{Name: "Google Pixel 7a", Price: usd(499), Image: "images/pixel7a.png"},
			{Name: "Samsung Galaxy A54", Price: usd(449), Image: "images/galaxya54.png"},
			{Name: "iPhone SE (2022)", Price: usd(429), Image: "images/iphonese.png"},
			{Name: "OnePlus Nord 3", Price: usd(479), Image: "images/nord3.png"},
			{Name: "Xiaomi Poco F5", Price: usd(399), Image: "images/pocof5.png"},
		},
		Strategy: Strategy{
			Title: "Mid-Range Phone Strategy",
			Points: []string{
				"Position as the sweet spot between price and performance",
				"Highlight camera capabilities and display quality",
				"Emphasize premium features at accessible prices",
				"Target upgraders from budget phones",
				"Offer attractive financing options",
			},
		},
	},
	Premium: {
		Index: Premium, Label: "Premium", Slug: "premium", Color: "#ef4444", Icon: "💳",
		Models: []Model{
			{Name: "iPhone 15", Price: usd(799), Image: "images/iphone15.png"},
			{Name: "Samsung Galaxy S23", Price: usd(799), Image: "images/galaxys23.png"},
			{Name: "Google Pixel 8", Price: usd(699), Image: "images/pixel8.png"},
			{Name: "OnePlus 11", Price: usd(699), Image: "images/oneplus11.png"},
			{Name: "Xiaomi 13", Price: usd(749), Image: "images/xiaomi13.png"},
		},
		Strategy: Strategy{
			Title: "Premium Phone Strategy",
			Points: []string{
				"Focus on performance and cutting-edge technology",
				"Highlight camera systems and display technology",
				"Emphasize premium materials and design",
				"Target tech enthusiasts and professionals",
				"Offer exclusive accessories and services",
			},
		},
	},
	Luxury: {
		Index: Luxury, Label: "Luxury", Slug: "luxury", Color: "#8b5cf6", Icon: "🏦",
		Models: []Model{
			{Name: "iPhone 15 Pro Max", Price: usd(1199), Image: "images/iphone15promax.png"},
			{Name: "Samsung Galaxy S23 Ultra", Price: usd(1199), Image: "images/galaxys23ultra.png"},
			{Name: "Google Pixel Fold", Price: usd(1799), Image: "images/pixelfold.png"},
			{Name: "Samsung Galaxy Z Fold5", Price: usd(1799), Image: "images/zfold5.png"},
			{Name: "Huawei Mate X3", Price: usd(1999), Image: "images/matex3.png"},
		},
		Strategy: Strategy{
			Title: "Luxury Phone Strategy",
			Points: []string{
				"Position as status symbols and exclusive devices",
				"Highlight cutting-edge innovation and unique features",
				"Emphasize premium materials and craftsmanship",
				"Target affluent consumers and early adopters",
				"Offer VIP services and personalized experiences",
			},
		},
	},
}

// Impact is one row of the static feature-impact table.
type Impact struct {
	Feature string  `json:"feature"`
	Weight  float64 `json:"weight"`
}

// FeatureImpact returns the importance table shipped with the model.
func FeatureImpact() []Impact {
	return []Impact{
		{Feature: "RAM", Weight: 0.348145},
		{Feature: "Battery", Weight: 0.097577},
		{Feature: "Screen Quality", Weight: 0.082037},
		{Feature: "Internal Memory", Weight: 0.036340},
		{Feature: "Camera System", Weight: 0.034207},
		{Feature: "Processor", Weight: 0.028100},
	}
}
