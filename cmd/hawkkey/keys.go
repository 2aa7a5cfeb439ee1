package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hawkkey/hawkkey-go/client"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage API keys",
	Long: `Manage Hawkkey API keys.

The full secret is returned only on create and rotate; save it
immediately, it cannot be retrieved again.

Examples:
  hawkkey keys list
  hawkkey keys create --name=ci-deploys --scope=deploy
  hawkkey keys revoke key_abc123
  hawkkey keys rotate key_abc123`,
}

var keysListCmd = &cobra.Command{
	Use:   "list",
	Short: "List API keys",
	RunE:  runKeysList,
}

var keysCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new API key",
	RunE:  runKeysCreate,
}

var keysRevokeCmd = &cobra.Command{
	Use:   "revoke <key-id>",
	Short: "Revoke an API key",
	Args:  cobra.ExactArgs(1),
	RunE:  runKeysRevoke,
}

var keysRotateCmd = &cobra.Command{
	Use:   "rotate <key-id>",
	Short: "Rotate an API key, issuing a fresh secret",
	Args:  cobra.ExactArgs(1),
	RunE:  runKeysRotate,
}

var (
	keyName   string
	keyScopes []string
)

func init() {
	rootCmd.AddCommand(keysCmd)

	keysCmd.AddCommand(keysListCmd)
	keysCmd.AddCommand(keysCreateCmd)
	keysCmd.AddCommand(keysRevokeCmd)
	keysCmd.AddCommand(keysRotateCmd)

	keysCreateCmd.Flags().StringVar(&keyName, "name", "", "key name (required)")
	keysCreateCmd.Flags().StringSliceVar(&keyScopes, "scope", nil, "scope to grant (repeatable)")
	keysCreateCmd.MarkFlagRequired("name")
}

func runKeysList(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}

	keys, err := c.ListKeys(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list keys: %w", err)
	}

	if len(keys) == 0 {
		fmt.Println("No API keys found.")
		fmt.Println()
		fmt.Println("Create a key with: hawkkey keys create --name=<name>")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPREFIX\tSTATUS\tCREATED")
	fmt.Fprintln(w, "--\t----\t------\t------\t-------")

	for _, k := range keys {
		status := "active"
		if k.RevokedAt != nil {
			status = "revoked"
		}
		created := k.CreatedAt.Format("2006-01-02")
		fmt.Fprintf(w, "%s\t%s\t%s...\t%s\t%s\n", k.ID, k.Name, k.Prefix, status, created)
	}

	w.Flush()
	return nil
}

func runKeysCreate(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}

	created, err := c.CreateKey(context.Background(), client.CreateKeyOptions{
		Name:   keyName,
		Scopes: keyScopes,
	})
	if err != nil {
		return fmt.Errorf("failed to create key: %w", err)
	}

	fmt.Printf("Created API key %q\n", created.Name)
	fmt.Println()
	fmt.Println("API Key (save this, shown once):")
	fmt.Printf("  %s\n", created.Secret)
	fmt.Println()
	fmt.Printf("Key ID: %s\n", created.ID)

	return nil
}

func runKeysRevoke(cmd *cobra.Command, args []string) error {
	keyID := args[0]

	c, err := newClient()
	if err != nil {
		return err
	}

	if err := c.RevokeKey(context.Background(), keyID); err != nil {
		return fmt.Errorf("failed to revoke key: %w", err)
	}

	fmt.Printf("Revoked key: %s\n", keyID)
	return nil
}

func runKeysRotate(cmd *cobra.Command, args []string) error {
	keyID := args[0]

	c, err := newClient()
	if err != nil {
		return err
	}

	rotated, err := c.RotateKey(context.Background(), keyID)
	if err != nil {
		return fmt.Errorf("failed to rotate key: %w", err)
	}

	fmt.Printf("Rotated key: %s\n", keyID)
	fmt.Println()
	fmt.Println("New API Key (save this, shown once):")
	fmt.Printf("  %s\n", rotated.Secret)

	return nil
}
