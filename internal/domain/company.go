package domain

// Company is one input row from the registry CSV. Immutable once read.
type Company struct {
	Number   string // registry number, the stable identifier
	Name     string
	Postcode string
	SICCodes string
	Extra    map[string]string // pass-through columns we don't interpret
}
