package power

import "strings"

// Category groups devices for advice and display.
type Category int

const (
	CategoryOther Category = iota
	CategoryCooling
	CategoryLighting
	CategoryRefrigeration
	CategoryEntertainment
	CategoryKitchen
	CategoryLaundry
	CategoryWater
	CategoryComputing
)

func (c Category) String() string {
	switch c {
	case CategoryCooling:
		return "Pendingin"
	case CategoryLighting:
		return "Penerangan"
	case CategoryRefrigeration:
		return "Kulkas"
	case CategoryEntertainment:
		return "Hiburan"
	case CategoryKitchen:
		return "Dapur"
	case CategoryLaundry:
		return "Cuci"
	case CategoryWater:
		return "Air"
	case CategoryComputing:
		return "Komputer"
	default:
		return "Lainnya"
	}
}

// keywords are matched in order; the first hit wins.
var keywords = []struct {
	words    []string
	category Category
}{
	{[]string{"kulkas", "freezer", "lemari es", "fridge", "refrigerator", "showcase"}, CategoryRefrigeration},
	{[]string{"ac", "air conditioner", "kipas", "fan", "pendingin", "cooler"}, CategoryCooling},
	{[]string{"tv", "televisi", "speaker", "radio", "playstation", "console", "sound"}, CategoryEntertainment},
	{[]string{"lampu", "lamp", "led", "bohlam", "neon", "light"}, CategoryLighting},
	{[]string{"rice cooker", "magic com", "microwave", "oven", "kompor", "blender", "dispenser", "toaster", "kettle"}, CategoryKitchen},
	{[]string{"mesin cuci", "washing", "setrika", "iron", "pengering", "dryer"}, CategoryLaundry},
	{[]string{"pompa", "pump", "water heater", "pemanas air", "shower"}, CategoryWater},
	{[]string{"laptop", "komputer", "computer", "pc", "monitor", "router", "printer", "charger"}, CategoryComputing},
}

// Classify guesses the category of a device from its name.
func Classify(name string) Category {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return CategoryOther
	}
	tokens := strings.FieldsFunc(lower, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_' || r == '/' || r == '(' || r == ')'
	})

	for _, k := range keywords {
		for _, w := range k.words {
			if strings.Contains(w, " ") {
				if strings.Contains(lower, w) {
					return k.category
				}
				continue
			}
			for _, t := range tokens {
				if t == w {
					return k.category
				}
			}
		}
	}
	return CategoryOther
}
