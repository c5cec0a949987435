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
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/valpere/cliptran/internal/pricing"
)

var estimateText string

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List model profiles and prices",
	Long: `List the selectable model profiles with their prices in USD per million
tokens. With --estimate the table is sorted by the estimated cost of
translating the given text, assuming the output is as long as the input.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := loadModels(appConfig)
		if err != nil {
			return err
		}

		profiles := table.List()
		tokens := 0
		if estimateText != "" {
			tokens = pricing.EstimateTokens(estimateText)
			profiles = table.ByCost(tokens, tokens)
			fmt.Printf("Estimated tokens: %d in, %d out\n\n", tokens, tokens)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		header := "\tID\tPROVIDER\tINPUT $/1M\tOUTPUT $/1M\tNAME"
		if estimateText != "" {
			header += "\tEST. COST"
		}
		fmt.Fprintln(w, header)
		for _, p := range profiles {
			marker := ""
			switch {
			case p.ID == appConfig.Model:
				marker = "*"
			case p.Recommended:
				marker = "+"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%.2f\t%s", marker, p.ID, p.ProviderID,
				p.InputPricePerMillionTokens, p.OutputPricePerMillionTokens, p.DisplayName)
			if estimateText != "" {
				fmt.Fprintf(w, "\t$%.6f", pricing.CalculateCost(p, tokens, tokens))
			}
			fmt.Fprintln(w)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Println("\n* active  + recommended")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)

	modelsCmd.Flags().StringVarP(&estimateText, "estimate", "e", "", "Estimate the cost of translating this text")
}
