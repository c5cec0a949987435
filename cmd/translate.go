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
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/valpere/cliptran/internal/orchestrator"
)

var (
	inputFile string
	fromPaste bool
	asBatch   bool
	copyBack  bool
	plainOut  bool
)

var translateCmd = &cobra.Command{
	Use:   "translate [text]",
	Short: "Translate text once",
	Long: `Translate text given as an argument, read from a file (--input, "-" for
stdin) or taken from the clipboard (--paste).

With --batch every non-blank line is translated separately, with a short pause
between requests. With --copy the translation is written to the clipboard.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		clip := clipboardNone
		if fromPaste || copyBack {
			clip = clipboardRequired
		}
		a, err := buildApp(clip)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()

		var wg sync.WaitGroup
		if !plainOut {
			events, unsubscribe := a.engine.Subscribe(0)
			wg.Add(1)
			go func() {
				defer wg.Done()
				renderEvents(os.Stdout, events, false)
			}()
			defer func() {
				unsubscribe()
				wg.Wait()
			}()
		}

		if fromPaste {
			res, err := a.engine.TranslateClipboard(ctx)
			if err != nil {
				return err
			}
			return finishOne(a, res)
		}

		text, err := readInput(args)
		if err != nil {
			return err
		}

		if asBatch {
			batch, err := a.engine.TranslateBatch(ctx, []string{text})
			if err != nil {
				return err
			}
			if plainOut {
				for _, e := range batch.Entries {
					fmt.Println(e.Translation)
				}
			}
			if copyBack {
				var lines []string
				for _, e := range batch.Entries {
					lines = append(lines, e.Translation)
				}
				if err := a.engine.CopyToClipboard(strings.Join(lines, "\n")); err != nil {
					return err
				}
			}
			if n := batch.Failed(); n > 0 {
				return fmt.Errorf("%d of %d lines failed", n, len(batch.Entries))
			}
			return nil
		}

		res, err := a.engine.TranslateOne(ctx, text)
		if err != nil {
			return err
		}
		return finishOne(a, res)
	},
}

func finishOne(a *app, res *orchestrator.Result) error {
	switch res.Status {
	case orchestrator.StatusFailed:
		return errors.New(res.Error)
	case orchestrator.StatusSkipped:
		return nil
	}
	if plainOut {
		fmt.Println(res.Translation)
	}
	if copyBack {
		return a.engine.CopyToClipboard(res.Translation)
	}
	return nil
}

func readInput(args []string) (string, error) {
	switch {
	case len(args) == 1 && inputFile != "":
		return "", fmt.Errorf("give either text or --input, not both")
	case len(args) == 1:
		return args[0], nil
	case inputFile == "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	case inputFile != "":
		data, err := os.ReadFile(inputFile)
		if err != nil {
			return "", fmt.Errorf("failed to read input file: %w", err)
		}
		return string(data), nil
	}
	return "", fmt.Errorf("nothing to translate: pass text, --input or --paste")
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input file to translate (- for stdin)")
	translateCmd.Flags().BoolVarP(&fromPaste, "paste", "p", false, "Translate the current clipboard content")
	translateCmd.Flags().BoolVarP(&asBatch, "batch", "b", false, "Translate each line separately")
	translateCmd.Flags().BoolVarP(&copyBack, "copy", "c", false, "Copy the translation to the clipboard")
	translateCmd.Flags().BoolVar(&plainOut, "plain", false, "Print only the translation")
}
