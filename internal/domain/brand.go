package domain

// Business lines the site presents. Products, reviews and contact messages are tagged with one.
const (
	BrandLPG       = "lpg"
	BrandFuel      = "fuel"
	BrandFurniture = "furniture"
)

// IsBrand reports whether s names a known business line.
func IsBrand(s string) bool {
	switch s {
	case BrandLPG, BrandFuel, BrandFurniture:
		return true
	}
	return false
}
