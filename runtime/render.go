package runtime

import (
	stderrors "errors"
	"fmt"
	"interaction-lab/domain"
	"interaction-lab/errors"
	"log/slog"
)

const (
	messageGeneric     = "Something went wrong while handling this interaction."
	messagePermissions = "I am missing the permissions needed to do that here."
	messageOutdated    = "This message is outdated. Run the command again."
	messageTimeout     = "This is taking too long, please try again later."
)

// RenderError turns any error reaching a top level boundary into the message shown
// to the user. Details of unexpected errors are only included when verbose.
func RenderError(err error, verbose bool) *domain.ResponseData {
	data := &domain.ResponseData{Flags: domain.FlagEphemeral}
	if u, ok := errors.AsUser(err); ok {
		data.Content = u.Message
		return data
	}
	switch {
	case stderrors.Is(err, errors.ErrMissingPermissions):
		data.Content = messagePermissions
	case stderrors.Is(err, errors.ErrInvalidEncodedCustomID), stderrors.Is(err, errors.ErrUnknownView):
		data.Content = messageOutdated
	case stderrors.Is(err, errors.ErrOffloadTimeout):
		data.Content = messageTimeout
	default:
		data.Content = messageGeneric
	}
	if verbose {
		data.Content += fmt.Sprintf("\n```\n%v\n```", err)
	}
	return data
}

// errorResponse picks the response shape the interaction type accepts.
func errorResponse(in *domain.Interaction, data *domain.ResponseData) *domain.Response {
	if in.Type == domain.InteractionAutocomplete {
		return domain.AutocompleteResponse()
	}
	return domain.MessageResponse(data)
}

// report logs err once. User errors are expected and stay at debug level.
func report(log *slog.Logger, err error) {
	if _, ok := errors.AsUser(err); ok {
		log.Debug("User facing error", "error", err)
		return
	}
	log.Error("Interaction failed", "error", err)
}
