package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rnwolfe/streak/internal/version"
	"github.com/spf13/cobra"
)

var (
	versionShort bool
	versionJSON  bool
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print streak version",
	RunE:  runVersion,
}

func runVersion(_ *cobra.Command, _ []string) error {
	switch {
	case versionJSON:
		return json.NewEncoder(os.Stdout).Encode(version.Get())
	case versionShort:
		fmt.Println(version.Short())
	default:
		fmt.Printf("streak %s\n", version.Full())
	}
	return nil
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print only the version number")
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "Print build details as JSON")
}
