package main

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/tablegate/tablegate/pkg/crypto"
	"github.com/tablegate/tablegate/pkg/db"
	"github.com/tablegate/tablegate/pkg/model"
	"github.com/tablegate/tablegate/pkg/permission"
	gormstore "github.com/tablegate/tablegate/pkg/server/store/gorm"
)

// userCreateCmd represents the user create command
var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user",
	Long: `Create a user directly in the database.

This is the bootstrap path for the first super admin; after that, users are
normally created through the API. If --password is omitted, a random
password is generated and printed to stdout.

Example:
  tablegatectl user create --email root@example.com --name Root --role super_admin`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := createUser(cmd); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create user: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	userCmd.AddCommand(userCreateCmd)

	userCreateCmd.Flags().String("email", "", "user email (required)")
	userCreateCmd.Flags().String("name", "", "display name (required)")
	userCreateCmd.Flags().String("role", "member", "global role (member or super_admin)")
	userCreateCmd.Flags().String("org", "", "organization id (optional)")
	userCreateCmd.Flags().String("password", "", "password (generated if omitted)")
	_ = userCreateCmd.MarkFlagRequired("email")
	_ = userCreateCmd.MarkFlagRequired("name")
}

func createUser(cmd *cobra.Command) error {
	email, _ := cmd.Flags().GetString("email")
	name, _ := cmd.Flags().GetString("name")
	roleStr, _ := cmd.Flags().GetString("role")
	orgStr, _ := cmd.Flags().GetString("org")
	password, _ := cmd.Flags().GetString("password")

	role := permission.Role(roleStr)
	if role != permission.RoleMember && role != permission.RoleSuperAdmin {
		return fmt.Errorf("invalid role %q (member or super_admin)", roleStr)
	}

	user := &model.User{
		Name:  name,
		Email: email,
		Role:  role,
	}
	if orgStr != "" {
		orgID, err := uuid.Parse(orgStr)
		if err != nil {
			return fmt.Errorf("invalid organization id: %w", err)
		}
		user.OrganizationID = &orgID
	}

	generated := false
	if password == "" {
		random, err := crypto.RandomKey()
		if err != nil {
			return err
		}
		password = base64.RawURLEncoding.EncodeToString(random[:18])
		generated = true
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)

	database, err := db.Connect(db.Config{})
	if err != nil {
		return err
	}

	if err := gormstore.NewUsersStore(database).CreateUser(user); err != nil {
		return err
	}

	fmt.Printf("Created user %s (%s)\n", user.Email, user.ID)
	if generated {
		fmt.Println(password)
	}
	return nil
}
