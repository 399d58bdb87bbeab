package cmd

import (
	"fmt"
	"log"
	"net/http"

	"github.com/spf13/cobra"
)

type balance struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Balance uint64 `json:"balance"`
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print your balance.",
	Run:   balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}

func balanceRun(cmd *cobra.Command, args []string) {
	w, err := loadWallet()
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("For Account:", w.AccountID())

	var bal balance
	if err := send(http.MethodGet, fmt.Sprintf("%s/v1/balance/%s", url, w.AccountID()), nil, &bal); err != nil {
		log.Fatal(err)
	}

	fmt.Println(bal.Balance)
}
