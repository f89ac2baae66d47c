package excel

// ReaderConfig holds per-source read options
type ReaderConfig struct {
	// Sheet selects the spreadsheet sheet. Empty reads the first sheet.
	Sheet string `json:"sheet" yaml:"sheet"`
	// Delimiter overrides the delimiter inferred from the file extension.
	Delimiter rune `json:"delimiter" yaml:"delimiter"`
}

// DefaultReaderConfig returns the defaults used when a source declares no options
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{}
}
