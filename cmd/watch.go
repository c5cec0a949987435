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

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	watchNoCopy bool
	watchClear  bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Translate clipboard changes as they happen",
	Long: `Poll the clipboard and translate new text copied from another application.

Text shorter than five characters, text that looks like an API key and text
already in the target language are ignored. Unless --no-copy is given the
translation is copied back to the clipboard, ready to paste.

Stop with Ctrl+C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(clipboardRequired)
		if err != nil {
			return err
		}
		defer a.Close()

		if watchNoCopy {
			a.engine.SetAutoCopy(false)
		}

		events, unsubscribe := a.engine.Subscribe(0)
		g, ctx := errgroup.WithContext(cmd.Context())

		g.Go(func() error {
			renderEvents(os.Stdout, events, watchClear)
			return nil
		})

		if err := a.engine.StartMonitor(ctx); err != nil {
			unsubscribe()
			_ = g.Wait()
			return err
		}

		s := a.engine.Settings()
		fmt.Fprintf(os.Stderr, "Watching clipboard: %s -> %s with %s (Ctrl+C to stop)\n",
			s.Source, s.Target, a.engine.ActiveModel().DisplayName)

		g.Go(func() error {
			<-ctx.Done()
			a.engine.StopMonitor()
			unsubscribe()
			return nil
		})

		if err := g.Wait(); err != nil {
			return err
		}

		snap := a.engine.Ledger()
		fmt.Fprintf(os.Stderr, "Session: %d requests, %d input + %d output tokens, $%.4f\n",
			snap.Requests, snap.TotalInputTokens, snap.TotalOutputTokens, snap.CumulativeCost)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().BoolVar(&watchNoCopy, "no-copy", false, "Do not copy translations back to the clipboard")
	watchCmd.Flags().BoolVar(&watchClear, "clear", false, "Clear the terminal before each translation when display is clear")
}
