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
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/valpere/cliptran/internal/config"
)

var version = "0.1.0"

var (
	cfgFile   string
	noHistory bool
	appConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "cliptran",
	Short: "Clipboard translator for live chat",
	Long: `A CLI application that watches the clipboard for Japanese or Chinese text
copied from a chat window, translates it through an OpenAI-compatible model
and optionally copies the translation back for pasting.

Providers: OpenAI, DeepSeek

Use "cliptran watch" to translate clipboard changes as they happen,
"cliptran translate" for one-off text and "cliptran serve" for the HTTP API.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(".env"); err != nil {
			return err
		}
		cfg, err := config.Load(viper.GetViper(), cfgFile)
		if err != nil {
			return err
		}
		appConfig = cfg
		return nil
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Config file (default ./cliptran.yaml or $HOME/.cliptran.yaml)")
	flags.String("model", "", "Model profile ID (see \"cliptran models\")")
	flags.StringP("source", "s", "", "Source language: auto, ja, zh or en")
	flags.StringP("target", "t", "", "Target language: ja, zh or en")
	flags.String("mode", "", "Translation mode: auto, japanese_only or chinese_only")
	flags.Bool("quality", false, "Use the quality-enhanced prompt")
	flags.Bool("debug", false, "Enable debug logging")
	flags.String("log-file", "", "Write logs to this file instead of stderr")
	flags.BoolVar(&noHistory, "no-history", false, "Do not record runs in the history database")

	_ = viper.BindPFlag("model", flags.Lookup("model"))
	_ = viper.BindPFlag("source_lang", flags.Lookup("source"))
	_ = viper.BindPFlag("target_lang", flags.Lookup("target"))
	_ = viper.BindPFlag("mode", flags.Lookup("mode"))
	_ = viper.BindPFlag("quality", flags.Lookup("quality"))
	_ = viper.BindPFlag("debug", flags.Lookup("debug"))
	_ = viper.BindPFlag("log_file", flags.Lookup("log-file"))
}
