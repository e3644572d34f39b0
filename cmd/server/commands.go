package main

import (
	"context"
	"fmt"
	"interaction-lab/infrastructure/rest"
	"interaction-lab/infrastructure/storage"
	"interaction-lab/runtime"
	"interaction-lab/views"
	"log/slog"

	"github.com/mama165/sdk-go/database"
	"github.com/samber/lo"
)

// syncCommands publishes the commands of every view, once per guild plus the global set.
func syncCommands(ctx context.Context, logger *slog.Logger, client *rest.Client, registry *runtime.Registry) error {
	for guildID, specs := range registry.CommandsByGuild() {
		if err := client.SyncCommands(ctx, guildID, toApplicationCommands(specs)); err != nil {
			return fmt.Errorf("failed to sync commands of guild %q: %w", guildID, err)
		}
		logger.Info("Commands synced", "guild_id", guildID, "count", len(specs))
	}
	return nil
}

func toApplicationCommands(specs []runtime.CommandSpec) []rest.ApplicationCommand {
	return lo.Map(specs, func(spec runtime.CommandSpec, _ int) rest.ApplicationCommand {
		return rest.ApplicationCommand{
			Name:        spec.Name,
			Type:        spec.Type,
			Description: spec.Description,
			Options: lo.Map(spec.Options, func(o runtime.OptionSpec, _ int) rest.ApplicationCommandOption {
				return rest.ApplicationCommandOption{
					Name:         o.Name,
					Description:  o.Description,
					Type:         o.Type,
					Required:     o.Required,
					Autocomplete: o.Autocomplete,
				}
			}),
		}
	})
}

func announce(ctx context.Context, engine *runtime.Engine, channelID, topic string) error {
	view, ok := engine.Registry().FindByPrefix(views.AnnouncementPrefix)
	if !ok {
		return fmt.Errorf("view %q is not registered", views.AnnouncementPrefix)
	}
	st, err := views.AnnouncementState(view.NewState(), topic)
	if err != nil {
		return err
	}
	_, err = engine.Send(ctx, view, channelID, st)
	return err
}

// OffloadMapper renders offload records in the debug inspector.
func OffloadMapper(key string, val []byte) database.InspectRow {
	row := database.DefaultMapper(key, val)

	record, err := storage.DecodeOffload(val)
	if err != nil {
		row.Detail = "Error: decode failed"
		return row
	}
	row.Type = string(record.Status)
	row.Detail = record.Prefix
	if record.Error != "" {
		row.Detail += ": " + record.Error
	}
	return row
}
