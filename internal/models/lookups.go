package models

// Lookup is one row of a lookup table. The service keys rows by lookupName;
// the remaining fields round-trip untouched.
type Lookup map[string]any

func (l Lookup) LookupName() string {
	name, _ := l["lookupName"].(string)
	return name
}

// LookupTable is the lookups___status.json payload.
type LookupTable struct {
	Lookups []Lookup `json:"lookups"`
}
