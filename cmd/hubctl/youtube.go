package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cresol/hub-api/internal/pkg/youtube"
)

func newYouTubeIDCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "youtube-id <url>",
		Short: "Print the video id and thumbnail derived from a YouTube URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, ok := youtube.ExtractID(args[0])
			if !ok {
				return fmt.Errorf("no video id in %q", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "id\t%s\nthumbnail\t%s\n", id, youtube.ThumbnailURL(id, youtube.QualityMax))
			return nil
		},
	}
}
