package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dukerupert/dayboard/internal/config"
	"github.com/dukerupert/dayboard/internal/email"
	"github.com/dukerupert/dayboard/internal/logging"
	"github.com/dukerupert/dayboard/internal/model"
	"github.com/dukerupert/dayboard/internal/notify"
	"github.com/dukerupert/dayboard/internal/store"
	"github.com/dukerupert/dayboard/internal/whatsapp"
)

func newWhatsApp(cfg *config.Config) *whatsapp.Client {
	var opts []whatsapp.Option
	if cfg.WhatsAppBaseURL != "" {
		opts = append(opts, whatsapp.WithBaseURL(cfg.WhatsAppBaseURL))
	}
	return whatsapp.NewClient(cfg.WhatsAppAPIKey, opts...)
}

func (a *app) sendTestCmd() *cobra.Command {
	var to, message string
	cmd := &cobra.Command{
		Use:   "send-test",
		Short: "Send a WhatsApp test message straight through the gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.envFile)
			if err != nil {
				return err
			}
			client := newWhatsApp(cfg)
			if !client.Configured() {
				return whatsapp.ErrNotConfigured
			}
			if err := client.Send(cmd.Context(), to, message); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sent to %s\n", to)
			return nil
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "recipient phone number")
	cmd.Flags().StringVar(&message, "message", "Test message from Dayboard", "message text")
	cmd.MarkFlagRequired("to")
	return cmd
}

func (a *app) verifyEmailCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify-email <address>",
		Short: "Send a Postmark test email to check the email setup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.envFile)
			if err != nil {
				return err
			}
			client := email.NewClient(cfg.PostmarkToken, cfg.PostmarkFrom)
			sentAt := time.Now().In(cfg.Location).Format(time.RFC1123)
			err = client.Send(cmd.Context(), args[0],
				"Dayboard email check",
				"<p>Your Dayboard email setup works.</p><p>Sent "+sentAt+"</p>",
				"Your Dayboard email setup works.\n\nSent "+sentAt,
			)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "email sent to %s from %s\n", args[0], cfg.PostmarkFrom)
			return nil
		},
	}
}

func (a *app) digestCmd() *cobra.Command {
	var kind, channel string
	cmd := &cobra.Command{
		Use:   "digest <email>",
		Short: "Compose and send one digest for a user now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if kind != model.DigestBriefing && kind != model.DigestReview {
				return fmt.Errorf("kind must be %s or %s", model.DigestBriefing, model.DigestReview)
			}
			if !notify.ValidChannel(channel) {
				return fmt.Errorf("channel must be %s or %s", model.ChannelEmail, model.ChannelWhatsApp)
			}

			cfg, db, err := a.open()
			if err != nil {
				return err
			}
			defer db.Close()

			users := store.NewUserStore(db)
			u, err := users.GetByEmail(args[0])
			if err != nil {
				return err
			}
			if u == nil {
				return fmt.Errorf("%s: %w", args[0], errUserNotFound)
			}

			d := notify.NewDispatcher(users, store.NewHabitStore(db), store.NewTaskStore(db),
				notify.WithEmail(email.NewClient(cfg.PostmarkToken, cfg.PostmarkFrom)),
				notify.WithWhatsApp(newWhatsApp(cfg)),
				notify.WithLocation(cfg.Location),
				notify.WithLogger(logging.Setup(cfg.LogLevel, cfg.LogFormat)),
			)
			if err := d.Dispatch(cmd.Context(), u.ID, kind, channel); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s sent to %s via %s\n", kind, u.Email, channel)
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", model.DigestBriefing, "briefing or review")
	cmd.Flags().StringVar(&channel, "channel", model.ChannelEmail, "email or whatsapp")
	return cmd
}
