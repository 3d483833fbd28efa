// Package validation provides data quality checks for the converted ISO 639 datasets.
package validation

import (
	"regexp"
	"slices"

	"github.com/giygas/iso639-converter/interfaces"
	"github.com/giygas/iso639-converter/isoparser"
	"github.com/giygas/iso639-converter/isoparser/entities"
)

// Pre-compiled regex patterns, reused for all validations
var (
	alpha3Regex = regexp.MustCompile(`^[a-z]{3}$`)
	alpha2Regex = regexp.MustCompile(`^[a-z]{2}$`)
)

// DataValidatorImpl implements the interfaces.DataValidator interface
type DataValidatorImpl struct{}

// NewDataValidator creates a new data validator
func NewDataValidator() interfaces.DataValidator {
	return &DataValidatorImpl{}
}

func newReport(dataset string) *interfaces.DataQualityReport {
	return &interfaces.DataQualityReport{
		Dataset:                       dataset,
		InvalidCodes:                  []string{},
		InvalidAlpha2:                 []string{},
		DuplicateCodes:                []string{},
		MacrolanguagesWithoutChildren: []string{},
		ChildrenWithoutEntry:          []string{},
		ChildrenOfNonMacrolanguage:    []string{},
	}
}

// ReportTwoLetterQuality checks the ISO 639-2 list.
// The reserved range "qaa-qtz" is reported as an invalid code.
func (v *DataValidatorImpl) ReportTwoLetterQuality(records []entities.TwoLetterLanguage) *interfaces.DataQualityReport {
	report := newReport(isoparser.DatasetTwoLetter)

	seen := make(map[string]bool, len(records))
	for _, record := range records {
		if !alpha3Regex.MatchString(record.Alpha3B) {
			report.InvalidCodes = append(report.InvalidCodes, record.Alpha3B)
		}

		if record.Alpha2 != "" && !alpha2Regex.MatchString(record.Alpha2) {
			report.InvalidAlpha2 = append(report.InvalidAlpha2, record.Alpha2)
		}

		if seen[record.Alpha3B] {
			report.DuplicateCodes = append(report.DuplicateCodes, record.Alpha3B)
		}
		seen[record.Alpha3B] = true
	}

	return report
}

// ReportThreeLetterQuality checks the ISO 639-3 table after macrolanguage linking.
func (v *DataValidatorImpl) ReportThreeLetterQuality(records []entities.ThreeLetterLanguage) *interfaces.DataQualityReport {
	report := newReport(isoparser.DatasetThreeLetter)

	byCode := make(map[string]*entities.ThreeLetterLanguage, len(records))
	for i := range records {
		record := &records[i]
		if byCode[record.Alpha3] != nil {
			report.DuplicateCodes = append(report.DuplicateCodes, record.Alpha3)
		}
		byCode[record.Alpha3] = record

		if !alpha3Regex.MatchString(record.Alpha3) {
			report.InvalidCodes = append(report.InvalidCodes, record.Alpha3)
		}
		if record.Alpha2 != "" && !alpha2Regex.MatchString(record.Alpha2) {
			report.InvalidAlpha2 = append(report.InvalidAlpha2, record.Alpha2)
		}
	}

	for _, record := range records {
		if isMacrolanguage(&record) && len(record.Children) == 0 {
			report.MacrolanguagesWithoutChildren = append(report.MacrolanguagesWithoutChildren, record.Alpha3)
		}

		for _, child := range record.Children {
			if byCode[child] == nil {
				report.ChildrenWithoutEntry = append(report.ChildrenWithoutEntry, child)
			}
		}

		if record.Parent == "" {
			continue
		}
		if parent := byCode[record.Parent]; parent != nil && !isMacrolanguage(parent) {
			report.ChildrenOfNonMacrolanguage = append(report.ChildrenOfNonMacrolanguage, record.Alpha3)
		}
	}

	return report
}

func isMacrolanguage(record *entities.ThreeLetterLanguage) bool {
	return slices.Contains(record.Tags, entities.MacrolanguageTag)
}
