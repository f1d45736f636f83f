package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bububa/purecheck/chat"
	"github.com/bububa/purecheck/errdefs"
)

var (
	askMode    string
	askSession string
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask about FSSAI guidelines or an analyzed product",
	Long: `Answers a question from the guideline index. With --session the product analyzed in
that server session is used as context, as the /chat endpoint does.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askMode, "mode", "auto", "auto, product or guideline")
	askCmd.Flags().StringVar(&askSession, "session", "", "session id whose product is used as context")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	mode, err := chat.ParseMode(askMode)
	if err != nil {
		return err
	}
	a := newApp(cfg, logger)
	defer a.Close()

	req := chat.Request{
		Question: strings.Join(args, " "),
		Mode:     mode,
	}
	if askSession != "" {
		store, err := a.sessions()
		if err != nil {
			return err
		}
		sc, err := store.Get(ctx, askSession)
		switch {
		case errors.Is(err, errdefs.ErrNotFound):
			logger.WarnContext(ctx, "session has no product", "session", askSession)
		case err != nil:
			return err
		default:
			req.Product = sc
		}
	}
	idx, err := a.index(ctx)
	if err != nil {
		return err
	}
	ans, err := a.chat(idx).Ask(ctx, req)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}
	cmd.Println(ans.Text)
	for i, p := range ans.Passages {
		if i == 0 {
			cmd.Println()
		}
		cmd.Printf("[%d] %s (%.2f)\n", i+1, p.Source, p.Score)
	}
	return nil
}
