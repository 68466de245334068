// SPDX-FileCopyrightText: 2026 Intrinsic Spiders
//
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
	netmail "net/mail"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/intrinsic-spiders/contact-relay/pkg/config"
	"github.com/intrinsic-spiders/contact-relay/pkg/contact"
	"github.com/intrinsic-spiders/contact-relay/pkg/mail"
	"github.com/intrinsic-spiders/contact-relay/pkg/system"
)

// mailSetup loads configuration and requires complete mail credentials.
func mailSetup(o *Options) (config.Config, *zap.SugaredLogger, mail.Provider, error) {
	log := system.NewLogger(o.Debug).Sugar()
	cfg, err := o.LoadConfig()
	if err != nil {
		return cfg, log, nil, fmt.Errorf("loading configuration: %w", err)
	}
	if err := cfg.Mail.CheckCredentials(); err != nil {
		return cfg, log, nil, err
	}
	provider, err := mail.NewProvider(cfg.Mail, log)
	if err != nil {
		return cfg, log, nil, err
	}
	return cfg, log, provider, nil
}

func newVerifyCommand(o *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check mail credentials and provider connectivity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, provider, err := mailSetup(o)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			err = mail.CheckConnection(cmd.Context(), provider, cfg.Mail.AttemptTimeout())
			switch {
			case errors.Is(err, mail.ErrNoConnectionCheck):
				_, _ = fmt.Fprintf(out, "%s: credentials present, no connection check available\n", provider.Name())
				return nil
			case err != nil:
				return fmt.Errorf("%s connection check failed: %w", provider.Name(), err)
			}
			_, _ = fmt.Fprintf(out, "%s: connection OK\n", provider.Name())
			return nil
		},
	}
}

func newSendTestCommand(o *Options) *cobra.Command {
	var to string
	var pair bool

	cmd := &cobra.Command{
		Use:   "send-test",
		Short: "Send a test confirmation through the configured provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, provider, err := mailSetup(o)
			if err != nil {
				return err
			}

			s := contact.Submission{
				Name:    "Contact Relay Test",
				Email:   to,
				Message: "This is a test message sent by contact-relay send-test.",
			}
			s.Normalize()
			if err := s.Validate(); err != nil {
				return fmt.Errorf("--to: %w", err)
			}
			// an operator-supplied recipient must be a deliverable address
			if _, err := netmail.ParseAddress(s.Email); err != nil {
				return fmt.Errorf("--to %q: %w", s.Email, err)
			}
			user, admin, err := contact.NewComposer(cfg.Branding, cfg.Mail.SenderAddress, cfg.Mail.AdminAddress).Compose(s)
			if err != nil {
				return err
			}

			deliverer := mail.NewDeliverer(mail.PolicyFromConfig(cfg.Mail), provider.Name(), log)
			out := cmd.OutOrStdout()

			if pair {
				res := mail.NewSequencer(provider, deliverer, log).
					WithVerify(cfg.Mail.VerifyConnection).
					SendPair(cmd.Context(), user, admin)
				_, _ = fmt.Fprintf(out, "user: %s\nadmin: %s\n", res.User, res.Admin)
				return errors.Join(res.User.Err, res.Admin.Err)
			}

			session := provider.NewSession()
			defer func() { _ = session.Close() }()
			res := deliverer.Deliver(cmd.Context(), session, user)
			_, _ = fmt.Fprintf(out, "user: %s\n", res)
			return res.Err
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Recipient of the test confirmation")
	cmd.Flags().BoolVar(&pair, "pair", false, "Also send the admin notification")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}
