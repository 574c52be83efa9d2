package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/fulcrumproject/taskdb/datasource"
)

func newRootCmd(opts datasource.CLIOptions) *cobra.Command {
	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Inspect the datasource used by the migration tooling",
		SilenceUsage: true,
	}
	root.AddCommand(newDatasourceCmd(opts), newListCmd(opts))
	return root
}

func newDatasourceCmd(opts datasource.CLIOptions) *cobra.Command {
	var showSecrets bool

	cmd := &cobra.Command{
		Use:   "datasource",
		Short: "Print the resolved datasource options as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := opts
			if !showSecrets {
				out.Options = opts.Options.Redacted()
			}
			data, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode datasource: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	cmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "print the password in clear text")
	return cmd
}

func newListCmd(opts datasource.CLIOptions) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the migration sources matching the configured globs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := matchMigrations(dir, opts.Migrations)
			if err != nil {
				return err
			}
			for _, f := range files {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "project root the globs are relative to")
	return cmd
}

// matchMigrations expands the globs under dir and returns the sorted, deduplicated paths relative to dir
func matchMigrations(dir string, globs []string) ([]string, error) {
	seen := map[string]struct{}{}
	var files []string
	for _, g := range globs {
		matches, err := filepath.Glob(filepath.Join(dir, g))
		if err != nil {
			return nil, fmt.Errorf("invalid migration glob %q: %w", g, err)
		}
		for _, m := range matches {
			rel, err := filepath.Rel(dir, m)
			if err != nil {
				return nil, fmt.Errorf("failed to relativize %s: %w", m, err)
			}
			if _, ok := seen[rel]; ok {
				continue
			}
			seen[rel] = struct{}{}
			files = append(files, rel)
		}
	}
	sort.Strings(files)
	return files, nil
}
