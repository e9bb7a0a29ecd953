package main

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/tablegate/tablegate/pkg/crypto"
	"github.com/tablegate/tablegate/pkg/db"
	gormstore "github.com/tablegate/tablegate/pkg/server/store/gorm"
)

// userResetPasswordCmd represents the user reset-password command
var userResetPasswordCmd = &cobra.Command{
	Use:   "reset-password <email>",
	Short: "Reset a user's password",
	Long: `Reset the password for a user.

A new random password is generated, stored hashed, and printed to stdout.

Example:
  tablegatectl user reset-password root@example.com`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		email := args[0]

		password, err := resetPassword(email)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to reset password for %s: %v\n", email, err)
			os.Exit(1)
		}
		fmt.Println(password)
	},
}

func init() {
	userCmd.AddCommand(userResetPasswordCmd)
}

func resetPassword(email string) (string, error) {
	database, err := db.Connect(db.Config{})
	if err != nil {
		return "", err
	}

	users := gormstore.NewUsersStore(database)
	user, err := users.UserByEmail(email)
	if err != nil {
		return "", err
	}

	random, err := crypto.RandomKey()
	if err != nil {
		return "", err
	}
	password := base64.RawURLEncoding.EncodeToString(random[:18])

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	if err := users.UpdatePassword(user.ID, string(hash)); err != nil {
		return "", err
	}

	return password, nil
}
