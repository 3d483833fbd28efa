package entities

// MacrolanguageTag is the scope tag carried by macrolanguage entries.
const MacrolanguageTag = "Macrolanguage"

// TwoLetterLanguage is one row of the ISO 639-2 code list.
type TwoLetterLanguage struct {
	Alpha3B string  `json:"alpha_3_b"`
	Alpha3T string  `json:"alpha_3_t"`
	Alpha2  string  `json:"alpha_2"`
	NameEn  string  `json:"name_en"`
	NameFr  *string `json:"name_fr,omitempty"` // nil when the source line has only four fields
}

// ThreeLetterLanguage is one ISO 639-3 code table entry, optionally linked to
// its macrolanguage or to the individual languages it groups.
type ThreeLetterLanguage struct {
	Alpha3   string   `json:"alpha_3"`
	Alpha3B  string   `json:"alpha_3_b"`
	Alpha3T  string   `json:"alpha_3_t"`
	Alpha2   string   `json:"alpha_2"`
	NameRef  string   `json:"name_ref"`
	Comment  string   `json:"comment,omitempty"`
	Tags     []string `json:"tags"`
	Active   bool     `json:"active"`
	Parent   string   `json:"parent,omitempty"`
	Children []string `json:"children,omitempty"`
}
