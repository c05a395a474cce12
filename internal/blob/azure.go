package blob

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"fleetpulse.opentransit.org/internal/logging"
)

// AzureSource serves blobs from an Azure Storage container.
type AzureSource struct {
	client    *azblob.Client
	container string
}

// NewAzureSource creates a Source over the given storage account and
// container. Authentication uses a chained credential: environment,
// workload identity, then developer (Azure CLI) credentials. The first
// that produces a token wins.
func NewAzureSource(account, container string) (*AzureSource, error) {
	cred, err := buildChainedCredential()
	if err != nil {
		return nil, fmt.Errorf("blob: building azure credential: %w", err)
	}

	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net", account)
	client, err := azblob.NewClient(serviceURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("blob: creating azure client for %s: %w", serviceURL, err)
	}

	return &AzureSource{client: client, container: container}, nil
}

// buildChainedCredential assembles the credential chain. Constructors that
// fail outright (e.g. no environment variables at all) are skipped so the
// chain only contains candidates that could plausibly produce a token.
func buildChainedCredential() (azcore.TokenCredential, error) {
	logger := slog.Default().With(slog.String("component", "blob_azure"))

	var sources []azcore.TokenCredential

	if env, err := azidentity.NewEnvironmentCredential(nil); err == nil {
		sources = append(sources, env)
	} else {
		logging.LogOperation(logger, "environment_credential_unavailable")
	}
	if wi, err := azidentity.NewWorkloadIdentityCredential(nil); err == nil {
		sources = append(sources, wi)
	} else {
		logging.LogOperation(logger, "workload_identity_credential_unavailable")
	}
	if cli, err := azidentity.NewAzureCLICredential(nil); err == nil {
		sources = append(sources, cli)
	} else {
		logging.LogOperation(logger, "azure_cli_credential_unavailable")
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("no azure credential sources available")
	}

	return azidentity.NewChainedTokenCredential(sources, nil)
}

// Exists reports whether the named blob is present in the container.
func (s *AzureSource) Exists(ctx context.Context, name string) (bool, error) {
	blobClient := s.client.ServiceClient().NewContainerClient(s.container).NewBlobClient(name)
	_, err := blobClient.GetProperties(ctx, nil)
	if err == nil {
		return true, nil
	}
	if bloberror.HasCode(err, bloberror.BlobNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("blob: head %s: %w", name, err)
}

// Open returns a stream over the named blob.
func (s *AzureSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	resp, err := s.client.DownloadStream(ctx, s.container, name, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("blob: download %s: %w", name, err)
	}
	return resp.Body, nil
}
