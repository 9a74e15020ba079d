package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var tagsFileFlag string

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Show the active tag vocabulary",
	Long: `Show the tag vocabulary that captions are ranked against.

Resolution order: --tags flag, the context's tags file, then the
built-in default set.

Examples:
  clapety tags
  clapety tags --tags animals.txt --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cliCtx, err := getContext()
		if err != nil {
			return err
		}
		vocab, err := loadVocabulary(cliCtx, tagsFileFlag)
		if err != nil {
			return err
		}

		if isJSONOutput() {
			return outputResult(map[string]any{
				"tags":  vocab.Tags(),
				"count": vocab.Len(),
			}, getOutputFile(), true)
		}

		for _, tag := range vocab.Tags() {
			fmt.Println(tag)
		}
		return nil
	},
}

func init() {
	tagsCmd.Flags().StringVar(&tagsFileFlag, "tags", "", "newline-separated tag vocabulary file")
}
