package isoparser

import (
	"strings"
	"unicode"

	"github.com/giygas/iso639-converter/isoparser/entities"
	"github.com/giygas/iso639-converter/logging"
)

// Skip reasons reported in entities.SkipStats.
const (
	SkipBlankOrComment     = "blank_or_comment"
	SkipMissingColumns     = "missing_columns"
	SkipFieldCount         = "field_count"
	SkipRetired            = "retired"
	SkipUnknownMacro       = "unknown_macrolanguage"
	SkipUnknownIndividual  = "unknown_language"
	SkipParentAlreadyTaken = "parent_conflict"
)

// ParseTwoLetter reads the pipe-delimited ISO 639-2 list at path.
func ParseTwoLetter(path string) ([]entities.TwoLetterLanguage, entities.SkipStats, error) {
	text, err := readSource(path)
	if err != nil {
		return nil, nil, err
	}

	records, stats := parseTwoLetterText(text)

	if stats[SkipMissingColumns] > 0 {
		logging.Info("ISO 639-2 skip statistics",
			"source", path,
			"blank_or_comment", stats[SkipBlankOrComment],
			"missing_columns", stats[SkipMissingColumns],
			"records_parsed", len(records))
	}

	return records, stats, nil
}

func parseTwoLetterText(text string) ([]entities.TwoLetterLanguage, entities.SkipStats) {
	stats := entities.SkipStats{}
	records := make([]entities.TwoLetterLanguage, 0)

	for _, line := range splitLines(strings.TrimRightFunc(text, unicode.IsSpace)) {
		if isSkippable(line) {
			stats[SkipBlankOrComment]++
			continue
		}

		fields := strings.Split(line, "|")

		// alpha_3_b|alpha_3_t|alpha_2|name_en[|name_fr]
		if len(fields) < 4 {
			logging.Warn("Skipping ISO 639-2 line with missing columns", "line", line, "columns", len(fields))
			stats[SkipMissingColumns]++
			continue
		}

		record := entities.TwoLetterLanguage{
			Alpha3B: fields[0],
			Alpha3T: fields[1],
			Alpha2:  fields[2],
			NameEn:  fields[3],
		}
		if len(fields) > 4 {
			nameFr := fields[4]
			record.NameFr = &nameFr
		}

		records = append(records, record)
	}

	return records, stats
}
