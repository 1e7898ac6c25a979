package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaharia-lab/mailroom/internal/config"
	"github.com/shaharia-lab/mailroom/internal/logger"
	"github.com/shaharia-lab/mailroom/internal/service"
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Dispatch a single notification",
	Long:  "Render and deliver one notification to an explicit address, bypassing identity lookup.",
	RunE:  runSend,
}

func init() {
	sendCmd.Flags().String("template", "emails/notification", "template name")
	sendCmd.Flags().String("to", "", "recipient address (required)")
	sendCmd.Flags().String("lang", "", "message language (defaults to the configured default)")
	sendCmd.Flags().StringArray("param", nil, "template parameter as key=value (repeatable)")
	_ = sendCmd.MarkFlagRequired("to")
}

func runSend(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.LogDir, cfg.SlogLevel())
	if err != nil {
		return err
	}

	core, err := service.Initialize(cfg, service.Options{}, log)
	if err != nil {
		return fmt.Errorf("initializing dispatch core: %w", err)
	}
	defer core.Close()

	templateName, _ := cmd.Flags().GetString("template")
	to, _ := cmd.Flags().GetString("to")
	lang, _ := cmd.Flags().GetString("lang")
	rawParams, _ := cmd.Flags().GetStringArray("param")

	params := map[string]any{}
	for _, kv := range rawParams {
		key, value, found := strings.Cut(kv, "=")
		if !found {
			return fmt.Errorf("invalid --param %q, expected key=value", kv)
		}
		params[key] = value
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	outcome, err := core.Pipeline.SendToAddress(ctx, templateName, to, lang, params)
	if err != nil {
		return err
	}
	fmt.Printf("%s\n", outcome.Status)
	return nil
}
