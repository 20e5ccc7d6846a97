package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"landkit/pkg/ui"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:     "list [capture-file]",
	Short:   "List the land records found in a capture",
	Aliases: []string{"ls"},
	Long: `Parse a captured land listing and show the records it contains.

The capture is the JSON response of the land listing query, pasted into a
file or piped on stdin.

Examples:
  landkit list capture.json
  pbpaste | landkit list`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	if err := loadCapture(args); err != nil {
		fmt.Println(ui.FormatError("Failed to parse capture"))
		return err
	}

	items := registry.Items()
	if len(items) == 0 {
		fmt.Println(ui.FormatWarning("Capture contains no land records"))
		return nil
	}

	fmt.Println(ui.FormatTitle("Land Records"))
	fmt.Println()

	table := ui.NewTable([]ui.TableColumn{
		{Header: "Name", Width: 30},
		{Header: "UUID", Width: 36},
		{Header: "Source", Width: 40},
	})

	for _, item := range items {
		table.AddRow([]string{
			truncate(item.Name, 30),
			item.UUID,
			truncate(item.SourceLocation, 60),
		})
	}

	fmt.Print(table.Render())
	fmt.Println()
	fmt.Println(ui.FormatMuted(fmt.Sprintf("Total: %d records", len(items))))

	return nil
}

// truncate truncates a string to the specified number of runes
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
