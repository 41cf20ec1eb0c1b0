// Command yomudecode decodes a QR code from a raw pixel frame already
// captured to disk (no camera, no image-container parsing).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "yomudecode",
	Short: "Decode a QR code from a raw pixel buffer",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	Execute()
}
