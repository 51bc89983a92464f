package aggregate

// Monochrome scales ordered darkest first, assigned by amount.
var (
	MarinePalette = []string{
		"#0C1045", "#181C62", "#263080", "#354A9E",
		"#4A65B5", "#6580C5", "#839DD5", "#A8BAE2",
	}
	TealPalette = []string{
		"#004D52", "#006B73", "#008286", "#2A9D8F", "#5AB8AD",
	}
)

// FundAreaNumber is the program area of the Government Pension Fund Global.
const FundAreaNumber = 34

func DefaultExpenditureConfig() Config {
	return Config{
		Rules: []GroupingRule{
			{ID: "folketrygden", Name: "Folketrygden", Areas: []int{28, 29, 30, 33}},
			{ID: "kommuner", Name: "Kommuner og distrikter", Areas: []int{13}},
			{ID: "helse", Name: "Helse og omsorg", Areas: []int{10}},
			{ID: "kunnskap", Name: "Kunnskapsformål", Areas: []int{7}},
			{ID: "naering", Name: "Næring og fiskeri", Areas: []int{17}},
			{ID: "forsvar", Name: "Forsvar", Areas: []int{4}},
			{ID: "transport", Name: "Innenlands transport", Areas: []int{21}},
			{ID: "ovrige_utgifter", Name: "Øvrige utgifter", CatchAll: true},
		},
		Palette:          MarinePalette,
		TwoStepThreshold: defaultTwoStepThreshold,
	}
}

func DefaultRevenueConfig() Config {
	return Config{
		Rules: []GroupingRule{
			{ID: "spu", Name: "Overføring fra SPU", Areas: []int{FundAreaNumber}, Exclude: true},
			{ID: "skatter", Name: "Skatter og avgifter", Areas: []int{25}},
			{ID: "ovrige_inntekter", Name: "Øvrige inntekter", CatchAll: true},
		},
		Palette:          TealPalette,
		TwoStepThreshold: defaultTwoStepThreshold,
	}
}
