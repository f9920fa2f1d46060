package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"flintcfg/internal/driver"
	"flintcfg/internal/observ"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [flags] <path> [path...]",
	Short: "Resolve dialect and feature flags for source files",
	Long: `Resolve walks up from each source file to the enclosing flint.toml
manifest(s), finds the build target that owns the file, and prints the
dialect and enabled feature flags the formatter should parse it with.
Files outside any project fall back to the default dialect with no flags.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().String("format", "text", "output format (text|json)")
	resolveCmd.Flags().Uint("jobs", 0, "max concurrent resolutions (0 = all CPUs)")
	resolveCmd.Flags().Bool("no-cache", false, "bypass the on-disk result cache")
	resolveCmd.Flags().String("ui", "auto", "progress ui (auto|on|off)")
}

func runResolve(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	outputFormat, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetUint("jobs")
	if err != nil {
		return err
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return err
	}
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return err
	}

	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}
	timings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}

	var timer *observ.Timer
	if timings {
		timer = observ.NewTimer()
	}
	opts := driver.ResolveOptions{Jobs: jobs, NoCache: noCache, Timer: timer}

	var results []driver.ResolveResult
	if outputFormat == "text" && shouldUseTUI(mode) {
		results, err = runResolveWithUI(cmd.Context(), "resolving parse configuration", args, opts)
	} else {
		results, err = driver.ResolvePaths(cmd.Context(), args, opts)
	}
	if err != nil {
		return err
	}

	var hasErrors bool
	switch outputFormat {
	case "text":
		renderResolveText(results, quiet, &hasErrors)
	case "json":
		if err := renderResolveJSON(results, &hasErrors); err != nil {
			return err
		}
	default:
		return fmt.Errorf("resolve: unsupported output format %q", outputFormat)
	}

	if timer != nil {
		fmt.Fprint(os.Stderr, timer.Summary())
	}
	if hasErrors {
		return fmt.Errorf("resolve: failed to resolve some files")
	}
	return nil
}

func renderResolveText(results []driver.ResolveResult, quiet bool, hasErrors *bool) {
	dialectColor := color.New(color.FgCyan)
	targetColor := color.New(color.FgGreen)

	for _, res := range results {
		if res.Err != nil {
			*hasErrors = true
			fmt.Fprintf(os.Stderr, "resolve: %s: %v\n", res.Path, res.Err)
			continue
		}
		if !res.Found {
			if !quiet {
				fmt.Fprintf(os.Stdout, "%s: %s (no stanza, defaults)\n", res.Path, dialectColor.Sprint(res.Config.Dialect))
			}
			continue
		}
		line := fmt.Sprintf("%s: %s", res.Path, dialectColor.Sprint(res.Config.Dialect))
		if tokens := res.Config.Tokens(); len(tokens) > 0 {
			line += " [" + strings.Join(tokens, " ") + "]"
		}
		line += fmt.Sprintf(" (%s)", targetColor.Sprintf("%s %s", res.Kind, res.Target))
		fmt.Fprintln(os.Stdout, line)
	}
}

func renderResolveJSON(results []driver.ResolveResult, hasErrors *bool) error {
	type jsonResult struct {
		Path     string   `json:"path"`
		Found    bool     `json:"found"`
		Dialect  string   `json:"dialect"`
		Flags    []string `json:"flags"`
		Kind     string   `json:"kind,omitempty"`
		Target   string   `json:"target,omitempty"`
		Manifest string   `json:"manifest,omitempty"`
		Error    string   `json:"error,omitempty"`
	}

	payload := make([]jsonResult, 0, len(results))
	for _, res := range results {
		jr := jsonResult{
			Path:     res.Path,
			Found:    res.Found,
			Dialect:  res.Config.Dialect.String(),
			Flags:    res.Config.Tokens(),
			Kind:     res.Kind,
			Target:   res.Target,
			Manifest: res.Manifest,
		}
		if jr.Flags == nil {
			jr.Flags = []string{}
		}
		if res.Err != nil {
			*hasErrors = true
			jr.Error = res.Err.Error()
		}
		payload = append(payload, jr)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

var cleanCacheCmd = &cobra.Command{
	Use:   "clean-cache",
	Short: "Drop the on-disk resolution cache",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		cache, err := driver.OpenDiskCache("flintcfg")
		if err != nil {
			return err
		}
		return cache.DropAll()
	},
}
