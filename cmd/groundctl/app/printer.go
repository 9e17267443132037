package app

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/gosuri/uitable"
	"gopkg.in/yaml.v3"

	"github.com/Rus1K7/Airport/internal/fleet/core/model"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

func validateOutput(format string) error {
	switch format {
	case outputTable, outputJSON, outputYAML:
		return nil
	}
	return fmt.Errorf("unknown output format %q, must be one of table, json, yaml", format)
}

// printVehicles writes vehicles to w in the requested format.
func printVehicles(w io.Writer, format string, vehicles []model.Vehicle) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(vehicles)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(vehicles)
	case outputTable:
		table := uitable.New()
		table.MaxColWidth = 60
		table.AddRow("ID", "KIND", "STATUS", "LOCATION", "BASE", "TASK", "PAYLOAD")
		for _, v := range vehicles {
			table.AddRow(v.ID, v.Kind, v.Status, v.Location, v.BaseLocation, dash(v.TaskID), formatPayload(v.Payload))
		}
		_, err := fmt.Fprintln(w, table)
		return err
	}
	return validateOutput(format)
}

// formatPayload renders a payload as "chicken=2 fish=1", skipping empty categories.
func formatPayload(p model.Payload) string {
	keys := make([]string, 0, len(p))
	for k, q := range p {
		if q > 0 {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return "-"
	}
	slices.Sort(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, p[k])
	}
	return strings.Join(parts, " ")
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
