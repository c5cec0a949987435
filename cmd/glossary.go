/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/valpere/cliptran/internal/terminology"
)

var glossaryCmd = &cobra.Command{
	Use:   "glossary",
	Short: "Inspect the terminology dictionary",
	Long: `Show the terminology dictionary and preview how it rewrites text.

Terms are replaced before the text is sent for translation so that names the
model tends to mistranslate come out right. The dictionary is the built-in
default unless terminology_file points at a YAML term list; runtime edits made
through the HTTP API last until the process exits.`,
}

func printEntries(entries []terminology.Entry) error {
	if len(entries) == 0 {
		fmt.Println("Dictionary is empty.")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SOURCE TERM\tTARGET TERM")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\n", e.Source, e.Target)
	}
	return w.Flush()
}

var glossaryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the active terms",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadTerminology(appConfig)
		if err != nil {
			return err
		}
		return printEntries(d.Entries())
	},
}

var glossaryPresetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the preset terms that can be imported",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printEntries(terminology.Presets)
	},
}

var glossaryWithPresets bool

var glossaryPreviewCmd = &cobra.Command{
	Use:   "preview <text>",
	Short: "Show how the dictionary rewrites text",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadTerminology(appConfig)
		if err != nil {
			return err
		}
		if glossaryWithPresets {
			d.Merge(terminology.Presets)
		}

		out, notes := terminology.Preprocess(strings.Join(args, " "), d)
		fmt.Println(out)
		for _, n := range notes {
			fmt.Printf("  %s\n", n)
		}
		if len(notes) == 0 {
			fmt.Println("  (no terms matched)")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(glossaryCmd)

	glossaryPreviewCmd.Flags().BoolVar(&glossaryWithPresets, "presets", false, "Include preset terms")

	glossaryCmd.AddCommand(glossaryListCmd)
	glossaryCmd.AddCommand(glossaryPresetsCmd)
	glossaryCmd.AddCommand(glossaryPreviewCmd)
}
