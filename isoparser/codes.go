package isoparser

import "github.com/giygas/iso639-converter/isoparser/entities"

// Scope codes of the ISO 639-3 code table.
var scopeLabels = map[string]string{
	"I": "Individual",
	"M": entities.MacrolanguageTag,
	"S": "Special",
}

// Language type codes of the ISO 639-3 code table.
var typeLabels = map[string]string{
	"A": "Ancient",
	"C": "Constructed",
	"E": "Extinct",
	"H": "Historical",
	"L": "Living",
	"S": "Special",
}

// retiredStatus marks a retired individual language in the macrolanguage table.
const retiredStatus = "R"

func lookupLabel(table map[string]string, code string) string {
	if label, ok := table[code]; ok {
		return label
	}
	return code
}

// scopeLabel returns the label of a scope code, or the code itself when unknown.
func scopeLabel(code string) string {
	return lookupLabel(scopeLabels, code)
}

// typeLabel returns the label of a language type code, or the code itself when unknown.
func typeLabel(code string) string {
	return lookupLabel(typeLabels, code)
}

// buildTags returns the scope label followed by the type label when they differ.
func buildTags(scope, languageType string) []string {
	tags := []string{scopeLabel(scope)}
	if label := typeLabel(languageType); label != tags[0] {
		tags = append(tags, label)
	}
	return tags
}
