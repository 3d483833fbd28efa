package isoparser

import (
	"time"

	"github.com/giygas/iso639-converter/interfaces"
	"github.com/giygas/iso639-converter/isoparser/entities"
	"github.com/giygas/iso639-converter/logging"
)

// Dataset names, also used as metric labels.
const (
	DatasetTwoLetter   = "iso-639-2"
	DatasetThreeLetter = "iso-639-3"
)

// Compile-time checks to ensure both converters implement the Converter interface
var (
	_ interfaces.Converter = (*TwoLetterConverter)(nil)
	_ interfaces.Converter = (*ThreeLetterConverter)(nil)
)

// TwoLetterConverter writes the ISO 639-2 document
type TwoLetterConverter struct {
	source    string
	output    string
	validator interfaces.DataValidator
	now       func() time.Time
}

// NewTwoLetterConverter creates a converter from source to output.
// validator may be nil.
func NewTwoLetterConverter(source, output string, validator interfaces.DataValidator) *TwoLetterConverter {
	return &TwoLetterConverter{
		source:    source,
		output:    output,
		validator: validator,
		now:       time.Now,
	}
}

// Dataset implements the Converter interface
func (c *TwoLetterConverter) Dataset() string {
	return DatasetTwoLetter
}

// Convert implements the Converter interface
func (c *TwoLetterConverter) Convert() (entities.ConversionResult, error) {
	start := time.Now()
	logging.Info("Converting ISO 639-2 list", "source", c.source)

	records, stats, err := ParseTwoLetter(c.source)
	if err != nil {
		return entities.ConversionResult{}, err
	}

	if c.validator != nil {
		logQualityReport(c.validator.ReportTwoLetterQuality(records))
	}

	lastMod := c.now()
	if err := writeJSON(c.output, entities.NewEnvelope(records, lastMod)); err != nil {
		return entities.ConversionResult{}, err
	}

	result := entities.ConversionResult{
		Dataset:    DatasetTwoLetter,
		OutputPath: c.output,
		Records:    len(records),
		LastMod:    lastMod,
		Duration:   time.Since(start),
		Skipped:    stats,
	}
	logging.Info("ISO 639-2 file conversion completed", "records_count", result.Records, "output", c.output)
	return result, nil
}

// ThreeLetterConverter writes the ISO 639-3 document
type ThreeLetterConverter struct {
	sources   ThreeLetterSources
	output    string
	validator interfaces.DataValidator
	now       func() time.Time
}

// NewThreeLetterConverter creates a converter from sources to output.
// validator may be nil.
func NewThreeLetterConverter(sources ThreeLetterSources, output string, validator interfaces.DataValidator) *ThreeLetterConverter {
	return &ThreeLetterConverter{
		sources:   sources,
		output:    output,
		validator: validator,
		now:       time.Now,
	}
}

// Dataset implements the Converter interface
func (c *ThreeLetterConverter) Dataset() string {
	return DatasetThreeLetter
}

// Convert implements the Converter interface
func (c *ThreeLetterConverter) Convert() (entities.ConversionResult, error) {
	start := time.Now()
	logging.Info("Converting ISO 639-3 tables", "codes", c.sources.Codes, "macrolanguages", c.sources.Macrolanguages)

	records, stats, err := ParseThreeLetter(c.sources)
	if err != nil {
		return entities.ConversionResult{}, err
	}

	if c.validator != nil {
		logQualityReport(c.validator.ReportThreeLetterQuality(records))
	}

	lastMod := c.now()
	if err := writeJSON(c.output, entities.NewEnvelope(records, lastMod)); err != nil {
		return entities.ConversionResult{}, err
	}

	result := entities.ConversionResult{
		Dataset:    DatasetThreeLetter,
		OutputPath: c.output,
		Records:    len(records),
		LastMod:    lastMod,
		Duration:   time.Since(start),
		Skipped:    stats,
	}
	logging.Info("ISO 639-3 file conversion completed", "records_count", result.Records, "output", c.output)
	return result, nil
}

func logQualityReport(report *interfaces.DataQualityReport) {
	if report == nil || !report.HasIssues() {
		return
	}

	if len(report.InvalidCodes) > 0 {
		logging.Warn("Codes with unexpected format",
			"dataset", report.Dataset,
			"count", len(report.InvalidCodes),
			"codes", report.InvalidCodes)
	}
	if len(report.InvalidAlpha2) > 0 {
		logging.Warn("Two-letter codes with unexpected format",
			"dataset", report.Dataset,
			"count", len(report.InvalidAlpha2),
			"codes", report.InvalidAlpha2)
	}
	if len(report.DuplicateCodes) > 0 {
		logging.Warn("Duplicate codes detected",
			"dataset", report.Dataset,
			"count", len(report.DuplicateCodes),
			"codes", report.DuplicateCodes)
	}
	if len(report.MacrolanguagesWithoutChildren) > 0 {
		logging.Info("Macrolanguages without individual languages",
			"dataset", report.Dataset,
			"count", len(report.MacrolanguagesWithoutChildren),
			"codes", report.MacrolanguagesWithoutChildren)
	}
	if len(report.ChildrenWithoutEntry) > 0 {
		logging.Warn("Macrolanguage children missing from the code table",
			"dataset", report.Dataset,
			"count", len(report.ChildrenWithoutEntry),
			"codes", report.ChildrenWithoutEntry)
	}
	if len(report.ChildrenOfNonMacrolanguage) > 0 {
		logging.Warn("Languages linked to an entry that is not a macrolanguage",
			"dataset", report.Dataset,
			"count", len(report.ChildrenOfNonMacrolanguage),
			"codes", report.ChildrenOfNonMacrolanguage)
	}
}
