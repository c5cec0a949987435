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
	"io"
	"strings"

	"github.com/valpere/cliptran/internal/orchestrator"
)

const clearScreen = "\033[H\033[2J"

var kindPrefix = map[orchestrator.Kind]string{
	orchestrator.KindOriginal:        "  ",
	orchestrator.KindTranslation:     "» ",
	orchestrator.KindTimestamp:       "",
	orchestrator.KindCost:            "$ ",
	orchestrator.KindSkipped:         "- ",
	orchestrator.KindClipboardNotice: "📋 ",
	orchestrator.KindFailure:         "✗ ",
}

// renderEvents prints events until the channel is closed. A separator line
// follows each translation.
func renderEvents(w io.Writer, events <-chan orchestrator.Event, allowClear bool) {
	for ev := range events {
		if ev.Clear && allowClear {
			fmt.Fprint(w, clearScreen)
		}
		fmt.Fprintf(w, "%s%s\n", kindPrefix[ev.Kind], ev.Text)
		if ev.Kind == orchestrator.KindTranslation {
			fmt.Fprintln(w, strings.Repeat("=", 50))
		}
	}
}
