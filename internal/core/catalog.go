package core

// CatalogEntry is a built-in category shown in selection inputs. The catalog
// is a static constant, not persisted; users extend it through the
// categories table.
type CatalogEntry struct {
	Name  string
	Group string
}

// DefaultExpenseCategories lists the built-in expense categories with their
// human-readable group labels.
var DefaultExpenseCategories = []CatalogEntry{
	{Name: "Sgk", Group: "مصروفات ثابتة"},
	{Name: "إيجار", Group: "مصروفات ثابتة"},
	{Name: "عائدات", Group: "مصروفات ثابتة"},
	{Name: "فواتير إنترنت - موبايل", Group: "مصروفات ثابتة"},

	{Name: "اشتراكات مدفوعة", Group: "اشتراكات"},

	{Name: "كورسات ودروس - الشيخ", Group: "كورسات ودروس"},
	{Name: "كورسات ودروس - إرساء", Group: "كورسات ودروس"},

	{Name: "بنزين", Group: "مصروفات سيارة"},
	{Name: "مخالفات", Group: "مصروفات سيارة"},
	{Name: "تصليح", Group: "مصروفات سيارة"},
	{Name: "ضرائب", Group: "مصروفات سيارة"},

	{Name: "طعام", Group: "طعام"},
	{Name: "سوبرماركت", Group: "سوبرماركت"},

	{Name: "مواصلات", Group: "مواصلات"},
}

// DefaultIncomeCategories lists the built-in income categories.
var DefaultIncomeCategories = []CatalogEntry{
	{Name: "راتب", Group: "دخل"},
	{Name: "دخل إضافي", Group: "دخل"},
	{Name: "مشاريع جانبية", Group: "دخل"},
	{Name: "مكافأة", Group: "دخل"},
	{Name: "استثمارات", Group: "دخل"},
	{Name: "أخري", Group: "دخل"},
}

// DefaultCatalog returns the built-in catalog for a transaction type.
func DefaultCatalog(t TransactionType) []CatalogEntry {
	if t == Income {
		return DefaultIncomeCategories
	}
	return DefaultExpenseCategories
}
