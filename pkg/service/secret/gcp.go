package secret

import (
	"context"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/nudgebot/pkg/domain/interfaces"
	"github.com/secmon-lab/nudgebot/pkg/domain/model"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// GCP reads credentials from Google Cloud Secret Manager
type GCP struct {
	client    *secretmanager.Client
	projectID string
}

var _ interfaces.SecretStore = &GCP{}

// NewGCP creates a Secret Manager backed store. Short secret names are
// resolved within projectID.
func NewGCP(ctx context.Context, projectID string) (*GCP, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create secret manager client")
	}

	return &GCP{
		client:    client,
		projectID: projectID,
	}, nil
}

// ResourceName expands a secret name into a version resource name.
// Full "projects/..." names are used as-is; "/versions/latest" is appended when missing.
func ResourceName(projectID, name string) string {
	if !strings.HasPrefix(name, "projects/") {
		name = "projects/" + projectID + "/secrets/" + name
	}
	if !strings.Contains(name, "/versions/") {
		name += "/versions/latest"
	}
	return name
}

func (x *GCP) GetCredentials(ctx context.Context, name string) (*model.Credentials, error) {
	resource := ResourceName(x.projectID, name)

	resp, err := x.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: resource,
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrSecretNotFound, "secret version not found", goerr.V("name", resource))
		}
		return nil, goerr.Wrap(err, "failed to access secret version", goerr.V("name", resource))
	}

	return parseCredentials(resource, resp.GetPayload().GetData())
}

// Close releases the underlying gRPC connection
func (x *GCP) Close() error {
	return x.client.Close()
}
