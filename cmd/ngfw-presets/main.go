// Command ngfw-presets prints the form state a device preset resolves to.
//
// Usage:
//
//	ngfw-presets -list
//	ngfw-presets -device 4pro [-query 'wheelsize=9.0'] [-o table|yaml] [-changed]
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/pterm/pterm"
	"gopkg.in/yaml.v3"

	"ngfw-form/form"
	"ngfw-form/override"
	"ngfw-form/preset"
)

var (
	list    = flag.Bool("list", false, "List supported devices")
	device  = flag.String("device", string(preset.Pro2), "Device to resolve")
	query   = flag.String("query", "", "Query string overrides, e.g. wheelsize=9.0&rfm=on")
	output  = flag.String("o", "table", "Output format: table or yaml")
	changed = flag.Bool("changed", false, "Only show controls that differ from the default preset")
)

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	if *list {
		printDevices()
		return 0
	}

	id, err := preset.ParseDevice(*device)
	if err != nil {
		pterm.Error.Println(err)
		return 1
	}

	base := form.New(nil)
	if err := preset.NewResolver(base).ApplyDefault(); err != nil {
		pterm.Error.Println(err)
		return 1
	}

	state := form.New(nil)
	if err := preset.NewResolver(state).ApplyDevice(id); err != nil {
		pterm.Error.Println(err)
		return 1
	}
	ovs, err := override.Load(state, *query)
	if err != nil {
		pterm.Error.Println(err)
		return 1
	}

	rows := diff(base.Snapshot(), state.Snapshot(), *changed)

	switch *output {
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		if err := enc.Encode(map[string]any{"device": id, "overrides": ovs, "controls": rows}); err != nil {
			pterm.Error.Println(err)
			return 1
		}
	case "table":
		printTable(id, rows)
	default:
		pterm.Error.Printf("unknown output format %q\n", *output)
		return 1
	}
	return 0
}

type row struct {
	Name    string     `yaml:"name"`
	Value   form.Value `yaml:"value"`
	Enabled bool       `yaml:"enabled"`
	Changed bool       `yaml:"changed"`
}

func diff(base, got form.Snapshot, onlyChanged bool) []row {
	var rows []row
	for _, c := range got {
		b, _ := base.Get(c.ID)
		ch := b.Value != c.Value || b.Enabled != c.Enabled
		if onlyChanged && !ch {
			continue
		}
		rows = append(rows, row{Name: c.Name, Value: c.Value, Enabled: c.Enabled, Changed: ch})
	}
	return rows
}

func printDevices() {
	data := pterm.TableData{{"ID", "Name", "Family"}}
	for _, d := range preset.Devices() {
		data = append(data, []string{string(d.ID), d.Name, string(d.Family)})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func printTable(id preset.DeviceID, rows []row) {
	d, _ := preset.Lookup(id)
	pterm.DefaultHeader.WithFullWidth().Println(fmt.Sprintf("%s (%s)", d.Name, d.Family))

	data := pterm.TableData{{"Control", "Value", "Enabled", "Changed"}}
	for _, r := range rows {
		name := r.Name
		if r.Changed {
			name = pterm.LightYellow(name)
		}
		data = append(data, []string{name, r.Value.String(), strconv.FormatBool(r.Enabled), strconv.FormatBool(r.Changed)})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
