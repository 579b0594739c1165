package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Share the index through S3-compatible storage",
	Long: `Pushes the local index and scene catalog to an S3-compatible bucket,
or pulls them back to replace the local copy.

Configure the bucket with:
  sceneseek settings set snapshot.endpoint localhost:9000
  sceneseek settings set snapshot.bucket scenes`,
}

var snapshotPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Upload the local index",
	Args:  cobra.NoArgs,
	RunE:  runSnapshotPush,
}

var snapshotPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Replace the local index with the remote one",
	Args:  cobra.NoArgs,
	RunE:  runSnapshotPull,
}

func init() {
	snapshotCmd.AddCommand(snapshotPushCmd)
	snapshotCmd.AddCommand(snapshotPullCmd)
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshotPush(cmd *cobra.Command, _ []string) error {
	if snapshotService == nil {
		return errors.New("snapshot service not configured")
	}
	if err := snapshotService.Push(commandContext(cmd)); err != nil {
		return explain(fmt.Errorf("push failed: %w", err))
	}
	cmd.Println("Snapshot pushed.")
	return nil
}

func runSnapshotPull(cmd *cobra.Command, _ []string) error {
	if snapshotService == nil {
		return errors.New("snapshot service not configured")
	}
	if err := snapshotService.Pull(commandContext(cmd)); err != nil {
		return explain(fmt.Errorf("pull failed: %w", err))
	}
	cmd.Println("Snapshot pulled; the local index was replaced.")
	return nil
}
