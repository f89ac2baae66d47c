package normalize

// names maps long-form and alternate entity names to their canonical form.
// Lookups are single-step: a canonical name is never looked up again.
var names = map[string]string{
	"Arab Republic of Egypt":                                   "Egypt",
	"Argentine Republic":                                       "Argentina",
	"Bolivarian Republic of Venezuela":                         "Venezuela",
	"Brunei Darussalam":                                        "Brunei",
	"Commonwealth of Dominica":                                 "Dominica",
	"Commonwealth of the Bahamas":                              "Bahamas",
	"Czech Republic":                                           "Czechia",
	"Democratic People's Republic of Korea":                    "North Korea",
	"Democratic Republic of Sao Tome and Principe":             "Sao Tome and Principe",
	"Democratic Republic of Timor-Leste":                       "Timor-Leste",
	"Democratic Socialist Republic of Sri Lanka":               "Sri Lanka",
	"Eastern Republic of Uruguay":                              "Uruguay",
	"Federal Democratic Republic of Ethiopia":                  "Ethiopia",
	"Federal Democratic Republic of Nepal":                     "Nepal",
	"Federal Republic of Germany":                              "Germany",
	"Federal Republic of Nigeria":                              "Nigeria",
	"Federal Republic of Somalia":                              "Somalia",
	"Federated States of Micronesia":                           "Micronesia",
	"Federative Republic of Brazil":                            "Brazil",
	"French Republic":                                          "France",
	"Gabonese Republic":                                        "Gabon",
	"Grand Duchy of Luxembourg":                                "Luxembourg",
	"Hashemite Kingdom of Jordan":                              "Jordan",
	"Hellenic Republic":                                        "Greece",
	"Independent State of Papua New Guinea":                    "Papua New Guinea",
	"Independent State of Samoa":                               "Samoa",
	"Islamic Republic of Afghanistan":                          "Afghanistan",
	"Islamic Republic of Iran":                                 "Iran",
	"Islamic Republic of Mauritania":                           "Mauritania",
	"Islamic Republic of Pakistan":                             "Pakistan",
	"Kingdom of Bahrain":                                       "Bahrain",
	"Kingdom of Belgium":                                       "Belgium",
	"Kingdom of Bhutan":                                        "Bhutan",
	"Kingdom of Cambodia":                                      "Cambodia",
	"Kingdom of Denmark":                                       "Denmark",
	"Kingdom of Eswatini":                                      "Eswatini",
	"Kingdom of Lesotho":                                       "Lesotho",
	"Kingdom of Morocco":                                       "Morocco",
	"Kingdom of Norway":                                        "Norway",
	"Kingdom of Saudi Arabia":                                  "Saudi Arabia",
	"Kingdom of Spain":                                         "Spain",
	"Kingdom of Sweden":                                        "Sweden",
	"Kingdom of Thailand":                                      "Thailand",
	"Kingdom of Tonga":                                         "Tonga",
	"Kingdom of the Netherlands":                               "Netherlands",
	"Kyrgyz Republic":                                          "Kyrgyzstan",
	"Lao People's Democratic Republic":                         "Laos",
	"Lebanese Republic":                                        "Lebanon",
	"Micronesia (Federated States of)":                         "Micronesia",
	"People's Democratic Republic of Algeria":                  "Algeria",
	"People's Republic of Bangladesh":                          "Bangladesh",
	"People's Republic of China":                               "China",
	"Plurinational State of Bolivia":                           "Bolivia",
	"Portuguese Republic":                                      "Portugal",
	"Principality of Andorra":                                  "Andorra",
	"Principality of Monaco":                                   "Monaco",
	"Republic of Albania":                                      "Albania",
	"Republic of Angola":                                       "Angola",
	"Republic of Armenia":                                      "Armenia",
	"Republic of Austria":                                      "Austria",
	"Republic of Azerbaijan":                                   "Azerbaijan",
	"Republic of Belarus":                                      "Belarus",
	"Republic of Benin":                                        "Benin",
	"Republic of Botswana":                                     "Botswana",
	"Republic of Bulgaria":                                     "Bulgaria",
	"Republic of Burundi":                                      "Burundi",
	"Republic of Cabo Verde":                                   "Cabo Verde",
	"Republic of Cameroon":                                     "Cameroon",
	"Republic of Chad":                                         "Chad",
	"Republic of Chile":                                        "Chile",
	"Republic of Colombia":                                     "Colombia",
	"Republic of Costa Rica":                                   "Costa Rica",
	"Republic of Croatia":                                      "Croatia",
	"Republic of Cuba":                                         "Cuba",
	"Republic of Cyprus":                                       "Cyprus",
	"Republic of Djibouti":                                     "Djibouti",
	"Republic of Ecuador":                                      "Ecuador",
	"Republic of El Salvador":                                  "El Salvador",
	"Republic of Equatorial Guinea":                            "Equatorial Guinea",
	"Republic of Estonia":                                      "Estonia",
	"Republic of Fiji":                                         "Fiji",
	"Republic of Finland":                                      "Finland",
	"Republic of Ghana":                                        "Ghana",
	"Republic of Guatemala":                                    "Guatemala",
	"Republic of Guinea":                                       "Guinea",
	"Republic of Guinea-Bissau":                                "Guinea-Bissau",
	"Republic of Guyana":                                       "Guyana",
	"Republic of Haiti":                                        "Haiti",
	"Republic of Honduras":                                     "Honduras",
	"Republic of Iceland":                                      "Iceland",
	"Republic of India":                                        "India",
	"Republic of Indonesia":                                    "Indonesia",
	"Republic of Iraq":                                         "Iraq",
	"Republic of Italy":                                        "Italy",
	"Republic of Kazakhstan":                                   "Kazakhstan",
	"Republic of Kenya":                                        "Kenya",
	"Republic of Kiribati":                                     "Kiribati",
	"Republic of Korea":                                        "South Korea",
	"Republic of Latvia":                                       "Latvia",
	"Republic of Liberia":                                      "Liberia",
	"Republic of Lithuania":                                    "Lithuania",
	"Republic of Madagascar":                                   "Madagascar",
	"Republic of Malawi":                                       "Malawi",
	"Republic of Maldives":                                     "Maldives",
	"Republic of Mali":                                         "Mali",
	"Republic of Malta":                                        "Malta",
	"Republic of Mauritius":                                    "Mauritius",
	"Republic of Moldova":                                      "Moldova",
	"Republic of Mozambique":                                   "Mozambique",
	"Republic of Namibia":                                      "Namibia",
	"Republic of Nauru":                                        "Nauru",
	"Republic of Nicaragua":                                    "Nicaragua",
	"Republic of Niger":                                        "Niger",
	"Republic of Niue":                                         "Niue",
	"Republic of Panama":                                       "Panama",
	"Republic of Paraguay":                                     "Paraguay",
	"Republic of Peru":                                         "Peru",
	"Republic of Poland":                                       "Poland",
	"Republic of Rwanda":                                       "Rwanda",
	"Republic of San Marino":                                   "San Marino",
	"Republic of Senegal":                                      "Senegal",
	"Republic of Serbia":                                       "Serbia",
	"Republic of Seychelles":                                   "Seychelles",
	"Republic of Sierra Leone":                                 "Sierra Leone",
	"Republic of Singapore":                                    "Singapore",
	"Republic of Slovenia":                                     "Slovenia",
	"Republic of South Africa":                                 "South Africa",
	"Republic of South Sudan":                                  "South Sudan",
	"Republic of Sudan":                                        "Sudan",
	"Republic of Suriname":                                     "Suriname",
	"Republic of Tajikistan":                                   "Tajikistan",
	"Republic of Trinidad and Tobago":                          "Trinidad and Tobago",
	"Republic of Tunisia":                                      "Tunisia",
	"Republic of Turkey":                                       "Turkey",
	"Republic of Uganda":                                       "Uganda",
	"Republic of Uzbekistan":                                   "Uzbekistan",
	"Republic of Vanuatu":                                      "Vanuatu",
	"Republic of Yemen":                                        "Yemen",
	"Republic of Zambia":                                       "Zambia",
	"Republic of Zimbabwe":                                     "Zimbabwe",
	"Republic of the Gambia":                                   "Gambia",
	"Republic of the Philippines":                              "Philippines",
	"Republic of the Union of Myanmar":                         "Myanmar",
	"Russian Federation":                                       "Russia",
	"Slovak Republic":                                          "Slovakia",
	"Socialist Republic of Viet Nam":                           "Vietnam",
	"State of Eritrea":                                         "Eritrea",
	"State of Israel":                                          "Israel",
	"State of Kuwait":                                          "Kuwait",
	"State of Libya":                                           "Libya",
	"State of Qatar":                                           "Qatar",
	"Sultanate of Oman":                                        "Oman",
	"Swiss Confederation":                                      "Switzerland",
	"Syrian Arab Republic":                                     "Syria",
	"Taiwan (Province of China)":                               "Taiwan",
	"Togolese Republic":                                        "Togo",
	"Union of the Comoros":                                     "Comoros",
	"United Kingdom of Great Britain and Northern Ireland":     "United Kingdom",
	"United Mexican States":                                    "Mexico",
	"United Republic of Tanzania":                              "Tanzania",
	"United States of America":                                 "United States",
	"Venezuela (Bolivarian Republic of)":                       "Venezuela",
	"occupied Palestinian territory, including east Jerusalem": "Palestine",
}
