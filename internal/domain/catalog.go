package domain

// Categories lists the known categories in display order.
var Categories = []Category{
	CategoryMedicamentos,
	CategoryAlimentos,
	CategoryOutros,
}

// Subcategories maps each known category to its allowed subcategory
// labels. An empty subcategory always means "unspecified".
var Subcategories = map[Category][]string{
	CategoryMedicamentos: {"Dores de cabeça", "Febre", "Alergias", "Digestão", "Outros"},
	CategoryAlimentos:    {"Laticínios", "Carnes", "Molhos", "Sobras", "Outros"},
	CategoryOutros:       {"Cosméticos", "Suplementos", "Limpeza", "Outros"},
}

// DoseFrequencies lists the selectable intake frequencies.
var DoseFrequencies = []string{"1× por dia", "2× por dia", "3× por dia", "Personalizado"}

// DoseDurations lists the selectable intake durations.
var DoseDurations = []string{"Enquanto durar o produto", "Até data definida"}

// KnownCategory reports whether c belongs to the closed category set.
func KnownCategory(c Category) bool {
	_, ok := Subcategories[c]
	return ok
}

// KnownSubcategory reports whether sub is valid for category c. Empty is
// always valid (unspecified).
func KnownSubcategory(c Category, sub string) bool {
	if sub == "" {
		return true
	}
	for _, s := range Subcategories[c] {
		if s == sub {
			return true
		}
	}
	return false
}
