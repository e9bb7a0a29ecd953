package main

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tablegate/tablegate/pkg/crypto"
)

// dataKeyGenerateCmd represents the data-key generate command
var dataKeyGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a data encryption key",
	Long: `
Generate a data encryption key

Use this command to generate a new Base64-encoded 256 bit data encryption
key. Once generated, this key should be placed into the environment of the
tablegate server. It will be used to encrypt the credentials of every saved
connection.

Example:

$ export TABLEGATE_DATA_KEY="$(tablegatectl data-key generate)"
`,
	Run: func(cmd *cobra.Command, args []string) {
		key, err := crypto.RandomKey()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Failed to generate key:", err)
			os.Exit(1)
		}
		fmt.Printf("%s", base64.StdEncoding.Strict().EncodeToString(key))
	},
}

func init() {
	dataKeyCmd.AddCommand(dataKeyGenerateCmd)
}
