// Package cmd contains wallet app
package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ardanlabs/powchain/foundation/blockchain/wallet"
	"github.com/spf13/cobra"
)

var (
	accountName string
	accountPath string
	url         string
)

const (
	keyExtenstion = ".ecdsa"
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&accountName, "account", "a", "private.ecdsa", "Path to the private key.")
	rootCmd.PersistentFlags().StringVarP(&accountPath, "account-path", "p", "zblock/accounts/", "Path to the directory with private keys.")
	rootCmd.PersistentFlags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the node.")
}

var rootCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Your simple wallet",
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func getPrivateKeyPath() string {
	if !strings.HasSuffix(accountName, keyExtenstion) {
		accountName += keyExtenstion
	}

	return filepath.Join(accountPath, accountName)
}

func loadWallet() (*wallet.Wallet, error) {
	return wallet.Load(getPrivateKeyPath())
}
