package model

// TaxRates holds the per-world market tax percentage for each city, plus
// the name of the application that uploaded them.
type TaxRates struct {
	LimsaLominsa int32  `json:"limsa"`
	Gridania     int32  `json:"gridania"`
	Uldah        int32  `json:"uldah"`
	Ishgard      int32  `json:"ishgard"`
	Kugane       int32  `json:"kugane"`
	Crystarium   int32  `json:"crystarium"`
	OldSharlayan int32  `json:"old_sharlayan"`
	Tuliyollal   int32  `json:"tuliyollal"`
	Source       string `json:"source"`
}
