package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"flintcfg/internal/project"
)

var locateCmd = &cobra.Command{
	Use:   "locate [flags] <path>",
	Short: "Show the manifest candidates for a source file",
	Long: `Locate performs the upward manifest search for a single file and prints
the directory where manifests were found, the candidates in listing order,
and the file's path relative to that directory.`,
	Args: cobra.ExactArgs(1),
	RunE: runLocate,
}

func init() {
	locateCmd.Flags().String("format", "text", "output format (text|json)")
}

func runLocate(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	outputFormat, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}

	loc, found, err := project.Locate(args[0])
	if err != nil {
		return err
	}

	switch outputFormat {
	case "text":
		if !found {
			fmt.Fprintf(os.Stdout, "no manifest found above %s\n", args[0])
			return nil
		}
		fmt.Fprintf(os.Stdout, "directory: %s\n", loc.Dir)
		fmt.Fprintf(os.Stdout, "relative:  %s\n", loc.Rel)
		fmt.Fprintln(os.Stdout, "manifests:")
		for _, m := range loc.Manifests {
			fmt.Fprintf(os.Stdout, "  - %s\n", m)
		}
		return nil
	case "json":
		payload := struct {
			Found     bool     `json:"found"`
			Dir       string   `json:"dir,omitempty"`
			Rel       string   `json:"rel,omitempty"`
			Manifests []string `json:"manifests,omitempty"`
		}{Found: found, Dir: loc.Dir, Rel: loc.Rel, Manifests: loc.Manifests}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(payload)
	default:
		return fmt.Errorf("locate: unsupported output format %q", outputFormat)
	}
}
