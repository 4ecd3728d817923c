package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the supported device models",
	Long:  "Lists every device category and variant in the catalog with its interfaces and flash geometries",
	Run: func(cmd *cobra.Command, args []string) {
		cat := loadCatalog()

		w := new(tabwriter.Writer)
		w.Init(os.Stdout, 0, 8, 2, ' ', 0)
		magenta(w, "|  model  |\t|  interfaces  |\t|  flash  |\t|  description  |\n")
		fmt.Fprintln(w, "_________________\t______________\t_________________\t________________________")

		for _, catName := range cat.CategoryNames() {
			category := cat.Devices[catName]

			interfaces := strings.Join(category.Interfaces, ", ")
			if category.DefaultInterface != "" {
				interfaces += fmt.Sprintf(" (default: %s)", category.DefaultInterface)
			}
			fmt.Fprintf(w, "%s\t%s\t\t%s\n", catName, interfaces, category.Description)

			for _, varName := range category.VariantNames() {
				v := category.Variants[varName]
				sizes := make([]string, 0, len(v.FlashConfigs))
				for _, s := range v.FlashSizes() {
					if v.FlashConfigs[s].Default {
						s += " (default)"
					}
					sizes = append(sizes, s)
				}
				fmt.Fprintf(w, "  %s\t\t%s\t%s\n", varName, strings.Join(sizes, ", "), v.Description)
			}
		}
		w.Flush()
	},
}
