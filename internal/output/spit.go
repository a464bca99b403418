// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"

	"github.com/apex/log"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	"gopkg.in/yaml.v2"

	"github.com/staranto/envcachego/internal/attrs"
	"github.com/staranto/envcachego/internal/config"
)

// Options controls how SliceDiceSpit renders a dataset.
type Options struct {
	// Format is text, json or yaml.
	Format  string
	Filter  string
	Sort    string
	Titles  bool
	Color   bool
	Padding int
	Colors  config.ColorsConfig
}

// SliceDiceSpit orchestrates filtering, transforming, sorting and rendering
// of a dataset according to the options and attribute specifications.
func SliceDiceSpit(w io.Writer, rows []map[string]interface{}, al attrs.AttrList, opts Options) error {
	if w == nil {
		w = os.Stdout
	}

	// Filter out the rows we don't want. Do it here so that the following
	// processes are slightly more efficient since they'll be working on a smaller
	// dataset.
	dataset := FilterRows(rows, al, opts.Filter)

	// Transform each value in each row.
	for _, row := range dataset {
		for i := range al {
			if al[i].TransformSpec != "" {
				row[al[i].OutputKey] = al[i].Transform(row[al[i].OutputKey])
			}
		}
	}

	SortDataset(dataset, opts.Sort)

	switch opts.Format {
	case "json":
		out := project(dataset, al)
		if out == nil {
			out = []map[string]interface{}{}
		}
		jsonOutput, err := json.Marshal(out)
		if err != nil {
			return fmt.Errorf("failed to marshal json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(jsonOutput))
		return err
	case "yaml":
		yamlOutput, err := yaml.Marshal(orderedRows(dataset, al))
		if err != nil {
			return fmt.Errorf("failed to marshal yaml: %w", err)
		}
		_, err = w.Write(yamlOutput)
		return err
	default:
		TableWriter(dataset, al, opts, w)
		return nil
	}
}

// project keeps only included attrs.
func project(dataset []map[string]interface{}, al attrs.AttrList) []map[string]interface{} {
	var out []map[string]interface{}
	for _, row := range dataset {
		m := make(map[string]interface{})
		for _, attr := range al.Included() {
			m[attr.OutputKey] = row[attr.OutputKey]
		}
		out = append(out, m)
	}
	return out
}

// orderedRows keeps the attr order in yaml output.
func orderedRows(dataset []map[string]interface{}, al attrs.AttrList) []yaml.MapSlice {
	out := make([]yaml.MapSlice, 0, len(dataset))
	for _, row := range dataset {
		var ms yaml.MapSlice
		for _, attr := range al.Included() {
			ms = append(ms, yaml.MapItem{Key: attr.OutputKey, Value: row[attr.OutputKey]})
		}
		out = append(out, ms)
	}
	return out
}

// TableWriter renders the result set in a tabular form honoring color,
// titles and padding options.
func TableWriter(
	resultSet []map[string]interface{},
	al attrs.AttrList,
	opts Options,
	w io.Writer) {

	if len(resultSet) == 0 {
		return
	}

	var (
		headerStyle  = lipgloss.NewStyle().Align(lipgloss.Left)
		cellStyle    = lipgloss.NewStyle().Padding(0, 0).Align(lipgloss.Left)
		evenRowStyle = cellStyle
		oddRowStyle  = cellStyle
	)

	if opts.Color {
		headerColor, evenColor, oddColor := getColors(opts.Colors)

		headerStyle = headerStyle.Foreground(lipgloss.Color(headerColor))
		evenRowStyle = evenRowStyle.Foreground(lipgloss.Color(evenColor))
		oddRowStyle = oddRowStyle.Foreground(lipgloss.Color(oddColor))
	}

	included := al.Included()

	var rows [][]string
	for _, result := range resultSet {
		row := make([]string, 0, len(included))
		for _, attr := range included {
			row = append(row, InterfaceToString(result[attr.OutputKey], "-"))
		}
		rows = append(rows, row)
	}

	pad := opts.Padding
	log.Debugf("padding: %v", pad)

	t := table.New().
		BorderBottom(false).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			var style lipgloss.Style
			switch {
			case row == table.HeaderRow:
				style = headerStyle
			case row%2 == 0:
				style = evenRowStyle
			default:
				style = oddRowStyle
			}

			if col > 0 {
				style = style.PaddingLeft(pad)
			}

			return style
		}).
		Headers().
		Rows(rows...)

	if opts.Titles {
		var headers []string
		for _, attr := range included {
			headers = append(headers, attr.OutputKey)
		}

		// https://github.com/charmbracelet/lipgloss/issues/261
		t = t.Headers(headers...).BorderHeader(false)
	}
	fmt.Fprintln(w, t)
}

// getColors returns configured color values for table rendering, falling
// back to the defaults for any that are unset.
func getColors(c config.ColorsConfig) (header string, even string, odd string) {
	def := config.Default().Colors
	header, even, odd = c.Title, c.Even, c.Odd
	if header == "" {
		header = def.Title
	}
	if even == "" {
		even = def.Even
	}
	if odd == "" {
		odd = def.Odd
	}
	return
}

// InterfaceToString converts supported primitive or composite values to a
// string. A custom empty value may be provided.
func InterfaceToString(value interface{}, emptyValue ...string) string {
	if len(emptyValue) == 0 {
		emptyValue = []string{""}
	}

	if value == nil || reflect.ValueOf(value).IsZero() {
		return emptyValue[0]
	}

	switch value := value.(type) {
	case string:
		return value
	case int:
		return strconv.Itoa(value)
	case int64:
		return strconv.FormatInt(value, 10)
	case float64:
		return strconv.FormatFloat(value, 'g', 6, 64)
	case bool:
		return strconv.FormatBool(value)
	default:
		jsonBytes, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprintf("%v", value)
		}
		return string(jsonBytes)
	}
}
