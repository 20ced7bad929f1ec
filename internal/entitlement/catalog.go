package entitlement

import "errors"

var ErrInvalidKey = errors.New("unknown domain/part combination")

// Key is one sellable (domain, part) combination from the fixed catalog.
type Key struct {
	Domain string
	Part   string
	// Flag is the boolean field name carried by the user document,
	// e.g. "isInformatiqueHardware".
	Flag string
}

// Catalog is the full set of valid combinations, in display order. Not
// every domain carries every part; anything outside this list is rejected
// at the boundary instead of being synthesized from strings.
var Catalog = []Key{
	{Domain: "Informatique", Part: "Hardware", Flag: "isInformatiqueHardware"},
	{Domain: "Informatique", Part: "Software", Flag: "isInformatiqueSoftware"},
	{Domain: "GSM", Part: "Hardware", Flag: "isGSMHardware"},
	{Domain: "GSM", Part: "Software", Flag: "isGSMSoftware"},
	{Domain: "Marketing", Part: "Social", Flag: "isMarketingSocial"},
	{Domain: "Marketing", Part: "Content", Flag: "isMarketingContent"},
	{Domain: "Bureautique", Part: "Software", Flag: "isBureautiqueSoftware"},
	{Domain: "Bureautique", Part: "Content", Flag: "isBureautiqueContent"},
}

// Lookup resolves a (domain, part) pair against the catalog.
func Lookup(domain, part string) (Key, error) {
	for _, k := range Catalog {
		if k.Domain == domain && k.Part == part {
			return k, nil
		}
	}
	return Key{}, ErrInvalidKey
}

// FlagName returns the user-document field name for a valid pair.
func FlagName(domain, part string) (string, error) {
	k, err := Lookup(domain, part)
	if err != nil {
		return "", err
	}
	return k.Flag, nil
}
