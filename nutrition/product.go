package nutrition

// Product is the structured result of reading a packaged-food label
type Product struct {
	// Name full product name
	Name string `json:"product_name"`
	// Brand brand name if visible
	Brand string `json:"brand"`
	// Type Solid, Liquid, Semi-solid or Other
	Type string `json:"product_type"`
	// PackageSize net weight or volume
	PackageSize string `json:"package_size,omitempty"`
	// ServingSize serving size if printed
	ServingSize string `json:"serving_size,omitempty"`
	// Nutrition values per 100g or 100ml
	Nutrition Label `json:"nutritional_info_per_100g"`
}

// DisplayName returns the product name, or "Unknown"
func (p *Product) DisplayName() string {
	return orUnknown(p.Name)
}

// DisplayBrand returns the brand, or "Unknown"
func (p *Product) DisplayBrand() string {
	return orUnknown(p.Brand)
}

// DisplayType returns the product type, defaulting to "Solid"
func (p *Product) DisplayType() string {
	if p.Type == "" || p.Type == NotAvailable || p.Type == "N/A" {
		return "Solid"
	}
	return p.Type
}

func orUnknown(s string) string {
	if s == "" || s == NotAvailable || s == "N/A" {
		return "Unknown"
	}
	return s
}
