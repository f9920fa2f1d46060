package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"flintcfg/internal/manifest"
	"flintcfg/internal/project"
)

var stanzasCmd = &cobra.Command{
	Use:   "stanzas [flags] <manifest>",
	Short: "List the build-target stanzas a manifest declares",
	Long: `Stanzas decodes one manifest file and prints its stanzas in extraction
order (library, executables, tests, benchmarks). Unlike resolution, which
silently skips unparseable candidates, a parse failure here is reported:
the manifest was named explicitly.`,
	Args: cobra.ExactArgs(1),
	RunE: runStanzas,
}

func init() {
	stanzasCmd.Flags().String("format", "text", "output format (text|json)")
}

func runStanzas(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	outputFormat, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}

	m, err := manifest.Load(args[0])
	if err != nil {
		return err
	}
	stanzas := project.ExtractStanzas(m)

	switch outputFormat {
	case "text":
		renderStanzasText(stanzas)
		return nil
	case "json":
		return renderStanzasJSON(stanzas)
	default:
		return fmt.Errorf("stanzas: unsupported output format %q", outputFormat)
	}
}

func renderStanzasText(stanzas []project.Stanza) {
	if len(stanzas) == 0 {
		fmt.Fprintln(os.Stdout, "no stanzas")
		return
	}

	kindColor := color.New(color.FgYellow)
	nameWidth := 0
	for _, st := range stanzas {
		if w := runewidth.StringWidth(st.Target); w > nameWidth {
			nameWidth = w
		}
	}

	for _, st := range stanzas {
		name := st.Target + strings.Repeat(" ", nameWidth-runewidth.StringWidth(st.Target))
		dialect := st.Info.Dialect
		if dialect == "" {
			dialect = "(default)"
		}
		line := fmt.Sprintf("%s  %s  %-12s", kindColor.Sprintf("%-5s", st.Kind), name, dialect)
		if len(st.Info.Src) > 0 {
			line += "  src=" + strings.Join(st.Info.Src, ",")
		}
		if len(st.Modules) > 0 {
			line += fmt.Sprintf("  modules=%d", len(st.Modules))
		}
		if st.Main != "" {
			line += "  main=" + st.Main
		}
		fmt.Fprintln(os.Stdout, line)
	}
}

func renderStanzasJSON(stanzas []project.Stanza) error {
	type jsonStanza struct {
		Kind     string   `json:"kind"`
		Target   string   `json:"target"`
		Src      []string `json:"src,omitempty"`
		Dialect  string   `json:"dialect,omitempty"`
		Features []string `json:"features,omitempty"`
		Modules  []string `json:"modules,omitempty"`
		Main     string   `json:"main,omitempty"`
	}

	payload := make([]jsonStanza, 0, len(stanzas))
	for _, st := range stanzas {
		payload = append(payload, jsonStanza{
			Kind:     st.Kind.String(),
			Target:   st.Target,
			Src:      st.Info.Src,
			Dialect:  st.Info.Dialect,
			Features: st.Info.Features,
			Modules:  st.Modules,
			Main:     st.Main,
		})
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}
