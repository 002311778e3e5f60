package csip

// MetsModules returns the modules evaluated against each manifest, in
// order.
func MetsModules() []*Module {
	return []*Module{
		MetsRootModule(),
		MetsHdrModule(),
		DmdSecModule(),
		AmdSecModule(),
		FileSecModule(),
		StructMapModule(),
	}
}
