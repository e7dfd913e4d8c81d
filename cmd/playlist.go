package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/wxfm/internal/shared"
	"github.com/urfave/cli/v3"
)

// PlaylistCreate creates a playlist owned by the authenticated user
// and prints its ID for use as the run target.
func (r *Runner) PlaylistCreate(ctx context.Context, cmd *cli.Command) error {
	name := cmd.String("name")
	if name == "" {
		return fmt.Errorf("%w: --name flag is required", shared.ErrMissingArgument)
	}

	config, err := r.configFor(cmd)
	if err != nil {
		return err
	}

	music, err := r.musicService(config)
	if err != nil {
		return err
	}

	if err := music.Authenticate(ctx); err != nil {
		return err
	}

	user, err := music.CurrentUser(ctx)
	if err != nil {
		return err
	}

	r.logger.Infof("creating playlist %v for user %v", name, user.ID)

	playlist, err := music.CreatePlaylist(ctx, user.ID, name, cmd.String("description"), cmd.Bool("public"))
	if err != nil {
		return err
	}

	r.writePlainln("✓ Playlist created")
	r.writePlain("  Name: %s\n", playlist.Name)
	r.writePlain("  ID: %s\n", playlist.ID)
	if playlist.Public {
		r.writePlain("  Visibility: Public\n")
	} else {
		r.writePlain("  Visibility: Private\n")
	}
	r.writePlain("\nSet TARGET_PLAYLIST_ID=%s to target it on runs\n", playlist.ID)

	return nil
}

// PlaylistAdd appends tracks to a playlist by URI.
func (r *Runner) PlaylistAdd(ctx context.Context, cmd *cli.Command) error {
	playlistID := cmd.String("id")
	uris := cmd.StringSlice("uris")

	if playlistID == "" {
		return fmt.Errorf("%w: --id flag is required", shared.ErrMissingArgument)
	}
	if len(uris) == 0 {
		return fmt.Errorf("%w: at least one --uris value is required", shared.ErrMissingArgument)
	}

	config, err := r.configFor(cmd)
	if err != nil {
		return err
	}

	music, err := r.musicService(config)
	if err != nil {
		return err
	}

	if err := music.Authenticate(ctx); err != nil {
		return err
	}

	r.logger.Infof("appending %v tracks to playlist %v", len(uris), playlistID)

	if err := music.AddPlaylistTracks(ctx, playlistID, uris); err != nil {
		return err
	}

	r.writePlain("✓ Added %d tracks to playlist %s\n", len(uris), playlistID)

	return nil
}
