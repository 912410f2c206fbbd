package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"curldeck/pkg/reqfile"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list FILE",
	Short:   "List the requests defined in a request file",
	Aliases: []string{"ls"},
	Args:    cobra.ExactArgs(1),
	RunE:    runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read request file: %w", err)
	}

	requests := reqfile.ParseAll(string(data))
	if len(requests) == 0 {
		fmt.Println("No requests found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tMETHOD\tURL")
	for _, r := range requests {
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.Name, r.Method, r.Url)
	}
	return w.Flush()
}
