// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package cliio provides output formatting for CLI commands (table, CSV, JSON).
package cliio

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Format represents the output format for CLI commands.
type Format string

const (
	// FormatTable is the default table output format.
	FormatTable Format = "table"
	// FormatCSV is the CSV output format.
	FormatCSV Format = "csv"
	// FormatJSON is the JSON output format.
	FormatJSON Format = "json"
)

// ParseFormat parses a string into a Format, returning an error for unknown formats.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "table", "":
		return FormatTable, nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown format %q, must be one of: table, csv, json", s)
	}
}

// Section is a titled table.
//
// Sections written together share one set of column widths per section.
type Section struct {
	// Title is printed above the table. Optional.
	Title string
	// Headers are the column headers.
	Headers []string
	// Rows are the data rows.
	Rows [][]string
	// Totals is printed after a blank line below the rows. Optional.
	Totals []string
}

// WriteSections writes each section as an aligned table, separated by blank lines.
func WriteSections(writer io.Writer, sections ...Section) error {
	for i, section := range sections {
		if i > 0 {
			if _, err := fmt.Fprintln(writer); err != nil {
				return err
			}
		}
		if section.Title != "" {
			if _, err := fmt.Fprintln(writer, section.Title); err != nil {
				return err
			}
		}
		if err := writeSection(writer, section); err != nil {
			return err
		}
	}
	return nil
}

// WriteCSVRecords writes CSV records to the writer.
func WriteCSVRecords(writer io.Writer, records [][]string) error {
	csvWriter := csv.NewWriter(writer)
	if err := csvWriter.WriteAll(records); err != nil {
		return err
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

// WriteJSON writes objects as JSON with newlines between each object.
func WriteJSON[O any](writer io.Writer, objects ...O) error {
	for _, object := range objects {
		data, err := json.Marshal(object)
		if err != nil {
			return err
		}
		if _, err := writer.Write(data); err != nil {
			return err
		}
		if _, err := writer.Write([]byte("\n")); err != nil {
			return err
		}
	}
	return nil
}

// *** PRIVATE ***

func writeSection(writer io.Writer, section Section) error {
	tw := tabwriter.NewWriter(writer, 0, 0, 2, ' ', 0)
	if err := writeRow(tw, section.Headers); err != nil {
		return err
	}
	for _, row := range section.Rows {
		if err := writeRow(tw, row); err != nil {
			return err
		}
	}
	if len(section.Totals) > 0 {
		// A blank row of tabs keeps the totals aligned with the data columns.
		if err := writeRow(tw, make([]string, len(section.Headers))); err != nil {
			return err
		}
		if err := writeRow(tw, section.Totals); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func writeRow(writer io.Writer, row []string) error {
	_, err := fmt.Fprintln(writer, strings.Join(row, "\t"))
	return err
}
