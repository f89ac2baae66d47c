package dataset

// RenameTable maps pivot-generated and long source column names to the short
// names consumers reference. Every consumer-facing column name is defined here
// or in CanonicalPassThrough.
var RenameTable = map[string]string{
	// IHME measure x metric x sex pivot
	"valprevalencenumberboth":    "valprevnumberboth",
	"valprevalencenumberfemale":  "valprevnumberfemale",
	"valprevalencenumbermale":    "valprevnumbermale",
	"valprevalencepercentboth":   "valprevpercentboth",
	"valprevalencepercentfemale": "valprevpercentfemale",
	"valprevalencepercentmale":   "valprevpercentmale",
	"valprevalencerateboth":      "valprevrateboth",
	"valprevalenceratefemale":    "valprevratefemale",
	"valprevalenceratemale":      "valprevratemale",

	// WHO indicator x slice pivot
	"numericfemalescvdagestandardizeddeathrate":                          "f_cvd_std",
	"numericfemalescontrolledhypertensionadultsaged3079withhypertension": "f_htn_ctrl",
	"numericfemalesdiagnosedhypertensionadultsaged3079withhypertension":  "f_htn_diag",
	"numericfemaleshypertensionadultsaged3079":                           "f_htn",
	"numericfemalespercentageofcvddeathsoccurringunder70years":           "f_cvd_u70%",
	"numericfemalesraisedbloodpressureadultsaged3079years":               "f_high_bp",
	"numericfemalestreatedhypertensionadultsaged3079withhypertension":    "f_htn_rx",
	"numericmalescvdagestandardizeddeathrate":                            "m_cvd_std",
	"numericmalescontrolledhypertensionadultsaged3079withhypertension":   "m_htn_ctrl",
	"numericmalesdiagnosedhypertensionadultsaged3079withhypertension":    "m_htn_diag",
	"numericmaleshypertensionadultsaged3079":                             "m_htn",
	"numericmalespercentageofcvddeathsoccurringunder70years":             "m_cvd_u70%",
	"numericmalesraisedbloodpressureadultsaged3079years":                 "m_high_bp",
	"numericmalestreatedhypertensionadultsaged3079withhypertension":      "m_htn_rx",
	"numerictotalcvdagestandardizeddeathrate":                            "t_cvd_std",
	"numerictotalcontrolledhypertensionadultsaged3079withhypertension":   "t_htn_ctrl",
	"numerictotaldiagnosedhypertensionadultsaged3079withhypertension":    "t_htn_diag",
	"numerictotalhypertensionadultsaged3079":                             "t_htn",
	"numerictotalpercentageofcvddeathsoccurringunder70years":             "t_cvd_u70%",
	"numerictotalraisedbloodpressureadultsaged3079years":                 "t_high_bp",
	"numerictotaltreatedhypertensionadultsaged3079withhypertension":      "t_htn_rx",

	// single-indicator sources
	"Age-standardized death rate from cardiovascular diseases among both sexes":                        "cvd_death_std",
	"GDP per capita, PPP (constant 2017 international $)":                                              "gdp_pc",
	"Population (historical)":                                                                          "pop_hist",
	"World Bank's income classification":                                                               "wb_income",
	"World regions according to OWID":                                                                  "region",
	"age_standardized_death_rate":                                                                      "death_std",
	"CT_Units":                                                                                         "ct_units",
	"Ischaemic_Death_Rate (100,000)":                                                                   "ischemic_rate",
	"Obesity_Rate (%)":                                                                                 "obesity%",
	"Pacemaker_Implantations_per_1M":                                                                   "pacemaker_1m",
	"Rheumatic_Death_Rate (100,000)":                                                                   "rheumatic_rate",
	"Availability_of_Statins":                                                                          "statin_avail",
	"Statin_use_(1000)":                                                                                "statin_use_k",
	"Age-standardized death rate from hypertensive heart disease among both sexes":                     "htn_death_std",
	"Age-standardized death rate from ischaemic heart disease among both sexes":                        "ischemic_std",
	"Age-standardized death rate from rheumatic heart disease among both sexes":                        "rheumatic_std",
	"Share of total deaths in both sexes in those aged all ages that are from cardiovascular diseases": "cvd_share",
}

// CanonicalPassThrough lists pivot-generated names that are already canonical.
var CanonicalPassThrough = []string{
	"valdeathsnumberboth", "valdeathsnumberfemale", "valdeathsnumbermale",
	"valdeathspercentboth", "valdeathspercentfemale", "valdeathspercentmale",
	"valdeathsrateboth", "valdeathsratefemale", "valdeathsratemale",
}

// CanonicalColumns returns the set of names the rename table can produce
func CanonicalColumns() map[string]bool {
	out := make(map[string]bool, len(RenameTable)+len(CanonicalPassThrough))
	for _, to := range RenameTable {
		out[to] = true
	}
	for _, c := range CanonicalPassThrough {
		out[c] = true
	}
	return out
}
