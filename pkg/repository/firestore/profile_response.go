package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/nudgebot/pkg/domain/interfaces"
	"github.com/secmon-lab/nudgebot/pkg/domain/model"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	// DefaultProfileResponseCollection is the collection name used when none is configured
	DefaultProfileResponseCollection = "profile_responses"
)

type profileResponseRepository struct {
	client           *firestore.Client
	collectionName   string
	collectionPrefix string
}

var _ interfaces.ProfileResponseRepository = &profileResponseRepository{}

func newProfileResponseRepository(client *firestore.Client) *profileResponseRepository {
	return &profileResponseRepository{
		client:         client,
		collectionName: DefaultProfileResponseCollection,
	}
}

// profileResponseDoc is the Firestore persistence model. Documents are keyed by user ID.
type profileResponseDoc struct {
	UserID    string `firestore:"user_id"`
	Response  string `firestore:"response"`
	Timestamp int64  `firestore:"timestamp"`
}

func (r *profileResponseRepository) collection() *firestore.CollectionRef {
	if r.collectionPrefix != "" {
		return r.client.Collection(r.collectionPrefix + "_" + r.collectionName)
	}
	return r.client.Collection(r.collectionName)
}

func (r *profileResponseRepository) toDoc(resp *model.ProfileResponse) *profileResponseDoc {
	return &profileResponseDoc{
		UserID:    string(resp.UserID),
		Response:  resp.Response,
		Timestamp: resp.Timestamp,
	}
}

func (r *profileResponseRepository) fromDoc(doc *profileResponseDoc) *model.ProfileResponse {
	return &model.ProfileResponse{
		UserID:    model.SlackUserID(doc.UserID),
		Response:  doc.Response,
		Timestamp: doc.Timestamp,
	}
}

// Get retrieves the stored answer for the user, nil if none
func (r *profileResponseRepository) Get(ctx context.Context, userID model.SlackUserID) (*model.ProfileResponse, error) {
	doc, err := r.collection().Doc(string(userID)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get profile response", goerr.V("user_id", userID))
	}

	var respDoc profileResponseDoc
	if err := doc.DataTo(&respDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal profile response", goerr.V("user_id", userID))
	}

	return r.fromDoc(&respDoc), nil
}

// Put stores the answer with Set so a resubmission replaces the document
func (r *profileResponseRepository) Put(ctx context.Context, resp *model.ProfileResponse) error {
	if resp == nil {
		return goerr.New("profile response is nil")
	}
	if resp.UserID == "" {
		return goerr.New("user ID is required for profile response")
	}

	if _, err := r.collection().Doc(string(resp.UserID)).Set(ctx, r.toDoc(resp)); err != nil {
		return goerr.Wrap(err, "failed to save profile response", goerr.V("user_id", resp.UserID))
	}

	return nil
}
