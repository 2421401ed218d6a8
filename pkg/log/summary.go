// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

// 📊 SummaryRow is one rule's totals
type SummaryRow struct {
	Rule        string
	Scanned     int
	Matched     int
	Occurrences int
	Fixed       int
	Failed      int
}

// 📝 FormatSummary renders the per-rule totals as a table
func FormatSummary(rows []SummaryRow) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Rule", "Scanned", "Matched", "Occurrences", "Fixed", "Failed"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
	})

	for _, row := range rows {
		table.Append([]string{
			row.Rule,
			strconv.Itoa(row.Scanned),
			strconv.Itoa(row.Matched),
			strconv.Itoa(row.Occurrences),
			strconv.Itoa(row.Fixed),
			strconv.Itoa(row.Failed),
		})
	}
	table.Render()

	return buf.String()
}

// 📝 Summary prints the per-rule totals
func (l *Logger) Summary(rows []SummaryRow) {
	if len(rows) == 0 {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprint(l.console, "\n"+FormatSummary(rows))
}
