//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"interaction-lab/domain"
)

// IRestClient is the part of the platform REST API the dispatch layer talks to.
type IRestClient interface {
	CreateResponse(ctx context.Context, interactionID, token string, resp *domain.Response) error
	EditOriginal(ctx context.Context, token string, data *domain.ResponseData) error
	CreateFollowup(ctx context.Context, token string, data *domain.ResponseData) error
	CreateMessage(ctx context.Context, channelID string, data *domain.ResponseData) (string, error)
}

// ISignatureVerifier checks that a raw request was signed by the platform.
type ISignatureVerifier interface {
	Verify(body []byte, signature, timestamp string) bool
}

// IBackground runs work detached from the request that started it and keeps
// the process alive until that work settles.
type IBackground interface {
	Go(name string, fn func(ctx context.Context))
}

// IOffloadRecorder keeps track of offloaded continuations and their outcome.
type IOffloadRecorder interface {
	Record(ctx context.Context, record domain.OffloadRecord) error
}

// IWorker is a long running task kept alive by the supervisor. Run returning nil
// means the work is done for good.
type IWorker interface {
	Name() string
	Run(ctx context.Context) error
}
