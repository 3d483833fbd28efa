package isoparser

import (
	"slices"
	"strings"

	"github.com/giygas/iso639-converter/isoparser/entities"
	"github.com/giygas/iso639-converter/logging"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ThreeLetterSources lists the ISO 639-3 input files.
// NameIndex and Retirements are part of the published set but are not read.
type ThreeLetterSources struct {
	Codes          string
	Macrolanguages string
	NameIndex      string
	Retirements    string
}

// languageTable holds ISO 639-3 entries keyed by alpha_3.
type languageTable map[string]*entities.ThreeLetterLanguage

// ParseThreeLetter reads the ISO 639-3 code table, links macrolanguages to
// their individual languages and returns the entries sorted by alpha_3.
func ParseThreeLetter(sources ThreeLetterSources) ([]entities.ThreeLetterLanguage, entities.SkipStats, error) {
	stats := entities.SkipStats{}

	codesText, err := readSource(sources.Codes)
	if err != nil {
		return nil, nil, err
	}
	table := parseCodeTable(codesText, stats)
	logging.Info("ISO 639-3 code table parsed", "source", sources.Codes, "entries", len(table))

	macroText, err := readSource(sources.Macrolanguages)
	if err != nil {
		return nil, nil, err
	}
	links := linkMacrolanguages(macroText, table, stats)
	logging.Info("ISO 639-3 macrolanguages linked", "source", sources.Macrolanguages, "links", links)

	if stats.Total() > stats[SkipBlankOrComment] {
		logging.Info("ISO 639-3 skip statistics",
			"blank_or_comment", stats[SkipBlankOrComment],
			"field_count", stats[SkipFieldCount],
			"retired", stats[SkipRetired],
			"unknown_macrolanguage", stats[SkipUnknownMacro],
			"unknown_language", stats[SkipUnknownIndividual],
			"parent_conflict", stats[SkipParentAlreadyTaken])
	}

	return table.sorted(), stats, nil
}

// dataLines returns the lines of a tab-delimited table without its header.
// Trailing line breaks are dropped; trailing tabs are data.
func dataLines(text string) []string {
	lines := splitLines(strings.TrimRight(text, "\r\n"))
	if len(lines) == 0 {
		return nil
	}
	return lines[1:]
}

// parseCodeTable reads iso-639-3.tab:
// Id, Part2B, Part2T, Part1, Scope, Language_Type, Ref_Name[, Comment]
func parseCodeTable(text string, stats entities.SkipStats) languageTable {
	table := make(languageTable)

	for _, line := range dataLines(text) {
		if isSkippable(line) {
			stats[SkipBlankOrComment]++
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) != 7 && len(fields) != 8 {
			logging.Warn("Skipping ISO 639-3 line with unexpected column count", "line", line, "columns", len(fields))
			stats[SkipFieldCount]++
			continue
		}

		record := &entities.ThreeLetterLanguage{
			Alpha3:  fields[0],
			Alpha3B: fields[1],
			Alpha3T: fields[2],
			Alpha2:  fields[3],
			NameRef: fields[6],
			Tags:    buildTags(fields[4], fields[5]),
			Active:  true,
		}
		if len(fields) == 8 && fields[7] != "" {
			record.Comment = fields[7]
		}

		// Later duplicates replace earlier ones.
		table[record.Alpha3] = record
	}

	return table
}

// linkMacrolanguages reads iso-639-3-macrolanguages.tab (M_Id, I_Id, I_Status)
// and returns the number of child links made.
//
// The child is appended to the macrolanguage's children before the child
// itself is looked up, so a child without an entry still shows up there.
// A child keeps the first macrolanguage that claims it.
func linkMacrolanguages(text string, table languageTable, stats entities.SkipStats) int {
	links := 0

	for _, line := range dataLines(text) {
		if isSkippable(line) {
			stats[SkipBlankOrComment]++
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) != 3 {
			logging.Warn("Skipping macrolanguage line with unexpected column count", "line", line, "columns", len(fields))
			stats[SkipFieldCount]++
			continue
		}

		macroCode, childCode, status := fields[0], fields[1], fields[2]
		if status == retiredStatus {
			stats[SkipRetired]++
			continue
		}

		macro, ok := table[macroCode]
		if !ok {
			logging.Warn("Macrolanguage not found in code table", "macrolanguage", macroCode, "language", childCode)
			stats[SkipUnknownMacro]++
			continue
		}
		macro.Children = append(macro.Children, childCode)

		child, ok := table[childCode]
		if !ok {
			logging.Warn("Individual language not found in code table", "macrolanguage", macroCode, "language", childCode)
			stats[SkipUnknownIndividual]++
			continue
		}

		if child.Parent != "" {
			logging.Warn("Language already belongs to a macrolanguage",
				"language", childCode,
				"parent", child.Parent,
				"rejected_parent", macroCode)
			stats[SkipParentAlreadyTaken]++
			continue
		}

		child.Parent = macroCode
		links++
	}

	return links
}

// sorted returns the entries ordered by alpha_3 using root-locale collation.
func (t languageTable) sorted() []entities.ThreeLetterLanguage {
	records := make([]entities.ThreeLetterLanguage, 0, len(t))
	for _, record := range t {
		records = append(records, *record)
	}

	collator := collate.New(language.Und)
	slices.SortFunc(records, func(a, b entities.ThreeLetterLanguage) int {
		return collator.CompareString(a.Alpha3, b.Alpha3)
	})

	return records
}
