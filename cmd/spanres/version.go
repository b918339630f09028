package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"spanres/internal/driver"
	"spanres/internal/version"
)

// buildInfo is what `spanres version` reports. Optional fields stay empty
// unless asked for.
type buildInfo struct {
	Tool        string `json:"tool"`
	Version     string `json:"version"`
	CacheSchema uint16 `json:"cache_schema"`
	CacheReads  string `json:"cache_reads"`
	GitCommit   string `json:"git_commit,omitempty"`
	GitMessage  string `json:"git_message,omitempty"`
	BuildDate   string `json:"build_date,omitempty"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show spanres build information",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

func init() {
	f := versionCmd.Flags()
	f.Bool("hash", false, "include git commit hash")
	f.Bool("message", false, "include git commit message")
	f.Bool("date", false, "include build timestamp")
	f.Bool("full", false, "include all build metadata")
	f.String("format", "pretty", "output format (pretty|json)")
}

func runVersion(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	format, _ := flags.GetString("format")
	full, _ := flags.GetBool("full")
	want := func(name string) bool {
		on, _ := flags.GetBool(name)
		return on || full
	}

	info := buildInfo{
		Tool:        "spanres",
		Version:     orUnknown(version.Version),
		CacheSchema: driver.CacheSchemaVersion,
		CacheReads:  version.ReleaseLine(version.Semver()),
	}
	if want("hash") {
		info.GitCommit = orUnknown(version.GitCommit)
	}
	if want("message") {
		info.GitMessage = orUnknown(version.GitMessage)
	}
	if want("date") {
		info.BuildDate = orUnknown(version.BuildDate)
	}

	switch strings.ToLower(format) {
	case "json":
		return writeVersionJSON(cmd.OutOrStdout(), info)
	case "pretty":
		writeVersionPretty(cmd.OutOrStdout(), info)
		return nil
	}
	return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
}

func writeVersionPretty(w io.Writer, info buildInfo) {
	fmt.Fprintf(w, "spanres %s\n", version.Colored())
	fmt.Fprintf(w, "cache:   schema %d, reads %s\n", info.CacheSchema, info.CacheReads)
	for _, row := range [][2]string{
		{"commit", info.GitCommit},
		{"message", info.GitMessage},
		{"built", info.BuildDate},
	} {
		if row[1] != "" {
			fmt.Fprintf(w, "%-8s %s\n", row[0]+":", row[1])
		}
	}
}

func writeVersionJSON(w io.Writer, info buildInfo) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

func orUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "unknown"
	}
	return s
}
