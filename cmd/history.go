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
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/valpere/cliptran/internal/pricing"
	"github.com/valpere/cliptran/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the translation history",
	Long:  `List, summarise, and clear the SQLite translation history.`,
}

var (
	historyLimit  int
	historyStatus string
)

func openHistoryDB() (*store.Store, error) {
	db, err := openHistory(appConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func snippet(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n-3]) + "..."
	}
	return s
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent translations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openHistoryDB()
		if err != nil {
			return err
		}
		defer db.Close()

		records, err := db.ListHistory(context.Background(), store.ListFilter{Status: historyStatus, Limit: historyLimit})
		if err != nil {
			return fmt.Errorf("failed to list history: %w", err)
		}

		if len(records) == 0 {
			fmt.Println("No translations recorded.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tSTATUS\tLANG\tMODEL\tTOKENS\tSOURCE\tRESULT")
		for _, r := range records {
			result := r.TranslatedText
			if r.Status == "failed" {
				result = r.Error
			}
			fmt.Fprintf(w, "%s\t%s\t%s>%s\t%s\t%d/%d\t%s\t%s\n",
				r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Status,
				r.DetectedLang, r.TargetLang, r.Model,
				r.InputTokens, r.OutputTokens,
				snippet(r.SourceText, 30), snippet(result, 30))
		}
		return w.Flush()
	},
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show history statistics and cost per model",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openHistoryDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.Stats(context.Background())
		if err != nil {
			return fmt.Errorf("failed to get stats: %w", err)
		}

		fmt.Printf("Total runs:   %d\n", stats.Total)
		fmt.Printf("Translated:   %d\n", stats.Translated)
		fmt.Printf("Skipped:      %d\n", stats.Skipped)
		fmt.Printf("Failed:       %d\n", stats.Failed)
		if len(stats.ByModel) == 0 {
			return nil
		}

		table, err := loadModels(appConfig)
		if err != nil {
			return err
		}
		fmt.Println()
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "MODEL\tREQUESTS\tINPUT\tOUTPUT\tCOST (CURRENT PRICES)")
		var total float64
		for _, u := range stats.ByModel {
			cost := "n/a"
			if p, ok := table.Get(u.Model); ok {
				c := pricing.CalculateCost(p, int(u.InputTokens), int(u.OutputTokens))
				total += c
				cost = fmt.Sprintf("$%.4f", c)
			}
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\n", u.Model, u.Requests, u.InputTokens, u.OutputTokens, cost)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Printf("\nTotal cost: $%.4f\n", total)
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded translations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openHistoryDB()
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := db.ClearHistory(context.Background())
		if err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		fmt.Printf("Cleared %d entries from history.\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.PersistentFlags().String("db", "", "Database path (default ./data/cliptran.db)")
	_ = viper.BindPFlag("history.db", historyCmd.PersistentFlags().Lookup("db"))

	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of entries to show (0 for all)")
	historyListCmd.Flags().StringVar(&historyStatus, "status", "", "Only show translated, skipped or failed runs")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyStatsCmd)
	historyCmd.AddCommand(historyClearCmd)
}
