package domain

// ToolAvailability is the result of probing the external tools. It is
// recomputed on every probe.
type ToolAvailability struct {
	ExtractorInstalled bool
	ExtractorVersion   *string
	ConverterInstalled bool
	ConverterVersion   *string
	Platforms          map[Platform]bool
}

// NewToolAvailability derives platform support from the probed tools
func NewToolAvailability(extractorVersion, converterVersion *string) *ToolAvailability {
	a := &ToolAvailability{
		ExtractorInstalled: extractorVersion != nil,
		ExtractorVersion:   extractorVersion,
		ConverterInstalled: converterVersion != nil,
		ConverterVersion:   converterVersion,
		Platforms:          make(map[Platform]bool),
	}
	for _, p := range SupportedPlatforms() {
		a.Platforms[p] = !p.NeedsExtractor() || a.ExtractorInstalled
	}
	return a
}
