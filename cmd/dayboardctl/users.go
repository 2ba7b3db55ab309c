package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/dukerupert/dayboard/internal/auth"
	"github.com/dukerupert/dayboard/internal/model"
	"github.com/dukerupert/dayboard/internal/store"
)

const minPasswordLen = 8

func (a *app) seedAdminCmd() *cobra.Command {
	var email, password, phone string
	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create the admin account, or promote and reset it if it exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := a.open()
			if err != nil {
				return err
			}
			defer db.Close()

			u, created, err := seedAdmin(store.NewUserStore(db), email, password, phone)
			if err != nil {
				return err
			}
			verb := "updated"
			if created {
				verb = "created"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s %s (id %d)\n", u.Email, verb, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "admin email address")
	cmd.Flags().StringVar(&password, "password", "", "admin password")
	cmd.Flags().StringVar(&phone, "phone", "", "WhatsApp number for the admin")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}

func seedAdmin(users *store.UserStore, email, password, phone string) (*model.User, bool, error) {
	if len(password) < minPasswordLen {
		return nil, false, fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, false, fmt.Errorf("hash password: %w", err)
	}

	existing, err := users.GetByEmail(email)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		u, err := users.Create(email, string(hash), phone, model.RoleAdmin)
		if err != nil {
			return nil, false, err
		}
		return u, true, nil
	}

	if err := users.SetPasswordHash(existing.ID, string(hash)); err != nil {
		return nil, false, err
	}
	if err := users.SetRole(existing.ID, model.RoleAdmin); err != nil {
		return nil, false, err
	}
	if phone != "" {
		if err := users.SetPhone(existing.ID, phone); err != nil {
			return nil, false, err
		}
	}
	u, err := users.GetByID(existing.ID)
	return u, false, err
}

func (a *app) makeAdminCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "make-admin <email>",
		Short: "Grant the admin role to an existing user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := a.open()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := makeAdmin(store.NewUserStore(db), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now an admin\n", args[0])
			return nil
		},
	}
}

var errUserNotFound = errors.New("user not found")

func makeAdmin(users *store.UserStore, email string) error {
	u, err := users.GetByEmail(email)
	if err != nil {
		return err
	}
	if u == nil {
		return fmt.Errorf("%s: %w", email, errUserNotFound)
	}
	return users.SetRole(u.ID, model.RoleAdmin)
}

func (a *app) deleteUserCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-user <email>",
		Short: "Delete a user and all of their records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := a.open()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := deleteUser(store.NewUserStore(db), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s deleted\n", args[0])
			return nil
		},
	}
}

// deleteUser removes the account; habits, tasks, journal rows and the digest
// log go with it through ON DELETE CASCADE.
func deleteUser(users *store.UserStore, email string) error {
	u, err := users.GetByEmail(email)
	if err != nil {
		return err
	}
	if u == nil {
		return fmt.Errorf("%s: %w", email, errUserNotFound)
	}
	return users.Delete(u.ID)
}

func (a *app) tokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token <email>",
		Short: "Print a bearer token for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := a.open()
			if err != nil {
				return err
			}
			defer db.Close()

			u, err := store.NewUserStore(db).GetByEmail(args[0])
			if err != nil {
				return err
			}
			if u == nil {
				return fmt.Errorf("%s: %w", args[0], errUserNotFound)
			}

			tok, err := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL).Issue(u.ID, u.Role)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
}
