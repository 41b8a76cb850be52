package cmd

import (
	"github.com/charmbracelet/log"
	"github.com/matjam/slidepaper/internal/cli/cmd/utils"
	"github.com/matjam/slidepaper/internal/ipc"
	"github.com/spf13/cobra"
)

func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Get slidepaper status",
		Long:  `Returns the current status of the slidepaper process.`,
		Run: func(cmd *cobra.Command, args []string) {
			response, err := ipc.SendStatus()
			if err != nil {
				log.Errorf("Error sending command: %v", err)
				return
			}

			utils.PrintJSONColored(response)
		},
	}
}
